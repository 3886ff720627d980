package apngdec

const (
	numDeflateCodeSymbols = 288 // 256 literals, end code, length codes and 2 unused codes
	numDistanceSymbols    = 32  // 30 used, 2 unused
	numCodeLengthCodes    = 19  // 0-15 lengths, 16-18 run-length codes

	deflateCodeBitlen = 15
	distanceBitlen    = 15
	codeLengthBitlen  = 7
	maxBitLength      = 15

	treeUnfilled = 32767
)

// huffmanTree is a flat binary transition table with 2 entries per row, one
// per bit value. An entry below numcodes is a decoded symbol; anything else
// is the row of the next node plus numcodes.
type huffmanTree struct {
	table     []uint16
	numcodes  uint16
	maxbitlen uint16
}

func newHuffmanTree(numcodes, maxbitlen uint16) *huffmanTree {
	return &huffmanTree{
		table:     make([]uint16, 2*int(numcodes)),
		numcodes:  numcodes,
		maxbitlen: maxbitlen,
	}
}

// build generates the canonical Huffman code described by bitlen, as
// defined by RFC 1951 section 3.2.2, and converts it to the transition table.
func (t *huffmanTree) build(bitlen []uint16) error {
	n := int(t.numcodes)
	if len(bitlen) != n {
		return fail(ErrParam)
	}

	var blcount [maxBitLength + 1]uint16
	var nextcode [maxBitLength + 1]uint32
	for _, l := range bitlen {
		if l > t.maxbitlen {
			return malformed()
		}
		blcount[l]++
	}
	blcount[0] = 0
	for bits := uint16(1); bits <= t.maxbitlen; bits++ {
		nextcode[bits] = (nextcode[bits-1] + uint32(blcount[bits-1])) << 1
	}

	codes := make([]uint32, n)
	for sym, l := range bitlen {
		if l != 0 {
			codes[sym] = nextcode[l]
			nextcode[l]++
		}
	}

	for i := range t.table {
		t.table[i] = treeUnfilled
	}

	nodefilled := 0
	treepos := 0
	for sym, l := range bitlen {
		for i := uint16(0); i < l; i++ {
			bit := int(codes[sym]>>(l-i-1)) & 1
			// A complete tree has n-1 internal nodes; anything past that is
			// oversubscribed.
			if treepos > n-2 {
				return malformed()
			}
			slot := 2*treepos + bit
			v := t.table[slot]
			if v == treeUnfilled {
				if i+1 == l {
					t.table[slot] = uint16(sym)
					treepos = 0
				} else {
					nodefilled++
					t.table[slot] = uint16(nodefilled + n)
					treepos = nodefilled
				}
				continue
			}
			// The slot is taken: descending into a leaf, or ending on an
			// existing node, means two codes share a prefix.
			if int(v) < n || i+1 == l {
				return malformed()
			}
			treepos = int(v) - n
		}
	}

	for i, v := range t.table {
		if v == treeUnfilled {
			t.table[i] = 0
		}
	}
	return nil
}

// decodeSymbol walks the table one bit at a time from the root.
func (t *huffmanTree) decodeSymbol(in []byte, bp *uint) (uint16, error) {
	treepos := 0
	for {
		if !bitsAvailable(*bp, in, 1) {
			return 0, malformed()
		}
		bit := int(readBit(bp, in))
		ct := t.table[treepos<<1|bit]
		if ct < t.numcodes {
			return ct, nil
		}
		treepos = int(ct - t.numcodes)
		if treepos >= int(t.numcodes) {
			return 0, malformed()
		}
	}
}

// Fixed trees of RFC 1951 section 3.2.6, shared by every fixed-Huffman block.
var (
	fixedLiteralTree  *huffmanTree
	fixedDistanceTree *huffmanTree
)

func fixedLiteralLengths() []uint16 {
	lengths := make([]uint16, numDeflateCodeSymbols)
	for i := range lengths {
		switch {
		case i < 144:
			lengths[i] = 8
		case i < 256:
			lengths[i] = 9
		case i < 280:
			lengths[i] = 7
		default:
			lengths[i] = 8
		}
	}
	return lengths
}

func init() {
	fixedLiteralTree = newHuffmanTree(numDeflateCodeSymbols, deflateCodeBitlen)
	if err := fixedLiteralTree.build(fixedLiteralLengths()); err != nil {
		panic(err)
	}

	distLengths := make([]uint16, numDistanceSymbols)
	for i := range distLengths {
		distLengths[i] = 5
	}
	fixedDistanceTree = newHuffmanTree(numDistanceSymbols, distanceBitlen)
	if err := fixedDistanceTree.build(distLengths); err != nil {
		panic(err)
	}
}
