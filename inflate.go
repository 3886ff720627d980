package apngdec

const (
	firstLengthCodeIndex = 257
	lastLengthCodeIndex  = 285
	endOfBlockCode       = 256
)

// Base lengths represented by codes 257-285.
var lengthBase = [29]uint16{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}

// Extra bits used by codes 257-285, added to the base length.
var lengthExtra = [29]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 5,
	5, 5, 5, 0,
}

// Base backwards distances for distance codes 0-29.
var distanceBase = [30]uint16{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193, 257, 385, 513,
	769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}

// Extra bits of backwards distances, added to the base.
var distanceExtra = [30]uint8{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10,
	11, 11, 12, 12, 13, 13,
}

// Order in which the code length code lengths are stored in a dynamic block.
var codeLengthOrder = [numCodeLengthCodes]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// inflater decodes a raw DEFLATE stream into a buffer sized by the caller.
// Output never grows: a stream that produces more than len(out) bytes is
// malformed.
type inflater struct {
	in  []byte
	bp  uint
	out []byte
	pos int
}

// inflate decodes the DEFLATE stream in into out and returns the number of
// bytes written.
func inflate(out, in []byte) (int, error) {
	f := &inflater{in: in, out: out}
	for {
		if !bitsAvailable(f.bp, f.in, 3) {
			return f.pos, malformed()
		}
		final := readBit(&f.bp, f.in)
		btype := readBits(&f.bp, f.in, 2)

		var err error
		switch btype {
		case 0:
			err = f.storedBlock()
		case 1:
			err = f.huffmanBlock(fixedLiteralTree, fixedDistanceTree)
		case 2:
			var lit, dist *huffmanTree
			lit, dist, err = f.dynamicTrees()
			if err == nil {
				err = f.huffmanBlock(lit, dist)
			}
		default:
			err = malformed()
		}
		if err != nil {
			return f.pos, err
		}
		if final == 1 {
			return f.pos, nil
		}
	}
}

// storedBlock copies an uncompressed block verbatim.
func (f *inflater) storedBlock() error {
	f.bp = (f.bp + 7) &^ 7
	p := int(f.bp >> 3)

	if p+4 > len(f.in) {
		return malformed()
	}
	length := int(f.in[p]) | int(f.in[p+1])<<8
	nlength := int(f.in[p+2]) | int(f.in[p+3])<<8
	p += 4

	if length+nlength != 0xffff {
		return malformed()
	}
	if f.pos+length > len(f.out) {
		return malformed()
	}
	if p+length > len(f.in) {
		return malformed()
	}

	copy(f.out[f.pos:], f.in[p:p+length])
	f.pos += length
	f.bp = uint(p+length) * 8
	return nil
}

// dynamicTrees reads the code trees at the start of a dynamic block. The
// trees are themselves Huffman coded with the code length tree.
func (f *inflater) dynamicTrees() (*huffmanTree, *huffmanTree, error) {
	if !bitsAvailable(f.bp, f.in, 14) {
		return nil, nil, malformed()
	}
	hlit := int(readBits(&f.bp, f.in, 5)) + 257
	hdist := int(readBits(&f.bp, f.in, 5)) + 1
	hclen := int(readBits(&f.bp, f.in, 4)) + 4

	if !bitsAvailable(f.bp, f.in, uint(hclen)*3) {
		return nil, nil, malformed()
	}
	codeLengthLengths := make([]uint16, numCodeLengthCodes)
	for i := 0; i < hclen; i++ {
		codeLengthLengths[codeLengthOrder[i]] = uint16(readBits(&f.bp, f.in, 3))
	}
	clTree := newHuffmanTree(numCodeLengthCodes, codeLengthBitlen)
	if err := clTree.build(codeLengthLengths); err != nil {
		return nil, nil, err
	}

	// Literal/length and distance lengths are read as one run; repeats may
	// cross from one into the other.
	lengths := make([]uint16, hlit+hdist)
	for i := 0; i < len(lengths); {
		code, err := clTree.decodeSymbol(f.in, &f.bp)
		if err != nil {
			return nil, nil, err
		}

		var repeat int
		var value uint16
		switch {
		case code <= 15:
			lengths[i] = code
			i++
			continue
		case code == 16:
			if i == 0 {
				return nil, nil, malformed()
			}
			if !bitsAvailable(f.bp, f.in, 2) {
				return nil, nil, malformed()
			}
			repeat = 3 + int(readBits(&f.bp, f.in, 2))
			value = lengths[i-1]
		case code == 17:
			if !bitsAvailable(f.bp, f.in, 3) {
				return nil, nil, malformed()
			}
			repeat = 3 + int(readBits(&f.bp, f.in, 3))
		case code == 18:
			if !bitsAvailable(f.bp, f.in, 7) {
				return nil, nil, malformed()
			}
			repeat = 11 + int(readBits(&f.bp, f.in, 7))
		default:
			return nil, nil, malformed()
		}

		if i+repeat > len(lengths) {
			return nil, nil, malformed()
		}
		for n := 0; n < repeat; n++ {
			lengths[i] = value
			i++
		}
	}

	litLengths := make([]uint16, numDeflateCodeSymbols)
	copy(litLengths, lengths[:hlit])
	distLengths := make([]uint16, numDistanceSymbols)
	copy(distLengths, lengths[hlit:])

	// The end code must be present.
	if litLengths[endOfBlockCode] == 0 {
		return nil, nil, malformed()
	}

	lit := newHuffmanTree(numDeflateCodeSymbols, deflateCodeBitlen)
	if err := lit.build(litLengths); err != nil {
		return nil, nil, err
	}
	dist := newHuffmanTree(numDistanceSymbols, distanceBitlen)
	if err := dist.build(distLengths); err != nil {
		return nil, nil, err
	}
	return lit, dist, nil
}

// huffmanBlock decodes symbols until the end-of-block code.
func (f *inflater) huffmanBlock(lit, dist *huffmanTree) error {
	for {
		code, err := lit.decodeSymbol(f.in, &f.bp)
		if err != nil {
			return err
		}

		switch {
		case code == endOfBlockCode:
			return nil

		case code < endOfBlockCode:
			if f.pos >= len(f.out) {
				return malformed()
			}
			f.out[f.pos] = byte(code)
			f.pos++

		case code <= lastLengthCodeIndex:
			idx := code - firstLengthCodeIndex
			nextra := uint(lengthExtra[idx])
			if !bitsAvailable(f.bp, f.in, nextra) {
				return malformed()
			}
			length := int(lengthBase[idx]) + int(readBits(&f.bp, f.in, nextra))

			codeD, err := dist.decodeSymbol(f.in, &f.bp)
			if err != nil {
				return err
			}
			// Distance codes 30 and 31 never occur in valid data.
			if codeD > 29 {
				return malformed()
			}
			nextraD := uint(distanceExtra[codeD])
			if !bitsAvailable(f.bp, f.in, nextraD) {
				return malformed()
			}
			distance := int(distanceBase[codeD]) + int(readBits(&f.bp, f.in, nextraD))

			if distance > f.pos {
				return malformed()
			}
			if f.pos+length > len(f.out) {
				return malformed()
			}
			f.copyBack(distance, length)

		default:
			return malformed()
		}
	}
}

// copyBack copies length bytes starting distance bytes behind the write
// position. When length > distance the source wraps around to the start of
// the match, repeating the pattern.
func (f *inflater) copyBack(distance, length int) {
	start := f.pos
	back := start - distance
	for n := 0; n < length; n++ {
		f.out[f.pos] = f.out[back]
		f.pos++
		back++
		if back >= start {
			back = start - distance
		}
	}
}
