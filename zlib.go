package apngdec

// zlibInflate checks the two-byte zlib header (RFC 1950) and inflates the
// DEFLATE stream that follows into out. The Adler-32 trailer is not checked.
func zlibInflate(out, in []byte) (int, error) {
	if len(in) < 2 {
		return 0, malformed()
	}

	cmf, flg := in[0], in[1]
	// FCHECK makes CMF*256 + FLG a multiple of 31.
	if (int(cmf)*256+int(flg))%31 != 0 {
		return 0, malformed()
	}
	// PNG only allows method 8, deflate with a window of at most 32K.
	if cmf&15 != 8 || cmf>>4 > 7 {
		return 0, malformed()
	}
	// PNG forbids a preset dictionary.
	if flg&0x20 != 0 {
		return 0, malformed()
	}

	return inflate(out, in[2:])
}
