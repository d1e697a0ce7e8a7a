package romloader

// copierHeaderSize is the length of the header prepended by backup units.
const copierHeaderSize = 512

// romBankSize is the granularity of SNES program images.
const romBankSize = 1024

// HasCopierHeader reports whether data carries a copier header: images are
// whole multiples of 1 KiB, so a 512-byte remainder is the header.
func HasCopierHeader(data []byte) bool {
	return len(data)%romBankSize == copierHeaderSize
}

// StripCopierHeader returns data without its copier header, if it has one.
// The returned slice shares storage with data.
func StripCopierHeader(data []byte) ([]byte, bool) {
	if !HasCopierHeader(data) {
		return data, false
	}
	return data[copierHeaderSize:], true
}
