// Package pdftest writes small, well-formed PDF files for tests.
//
// The output is deliberately plain: one object per page, one per content
// stream, a classic cross-reference table and an optional standard
// security handler (revision 3, 128-bit RC4). That is enough to exercise
// the parsers and renderers in this module without checked-in binaries.
package pdftest

import (
	"bytes"
	"crypto/md5"
	"crypto/rc4"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Letter is the US Letter page size in points.
const (
	LetterWidth  = 612
	LetterHeight = 792
)

// Page describes one page.
type Page struct {
	// Width and Height set /MediaBox [0 0 Width Height]. When both are zero
	// the page inherits Document.MediaBox.
	Width, Height float64
	CropBox       *[4]float64
	Rotate        int
	// Content is the raw content stream.
	Content string
	Annots  []Annot
	// ExtGState maps resource names to dictionary bodies, e.g. "/ca 0.5".
	ExtGState map[string]string
	Forms     []Form
}

// Form is a form XObject named in the page resources.
type Form struct {
	Name    string
	BBox    [4]float64
	Matrix  *[6]float64
	Content string
}

// Annot describes one annotation.
type Annot struct {
	Subtype string // default Square
	Rect    [4]float64
	// Color is /C: 1, 3 or 4 components. Empty means no border color.
	Color       []float64
	BorderWidth float64
	Hidden      bool
	// Appearance, when set, is the /AP /N stream with /BBox
	// [0 0 width height] of Rect.
	Appearance string
}

// Document describes a whole file.
type Document struct {
	Pages []Page
	// MediaBox is set on the page tree root when non-zero.
	MediaBox [4]float64
	// Password encrypts the file when non-empty.
	Password string
	// UnsupportedSecurity writes an encryption dictionary with a handler
	// revision readers in this module cannot open.
	UnsupportedSecurity bool
	// Compress stores streams with /FlateDecode.
	Compress bool
}

// Letter returns a blank US Letter page.
func Letter() Page {
	return Page{Width: LetterWidth, Height: LetterHeight}
}

// Build returns an unencrypted file holding pages.
func Build(pages ...Page) []byte {
	return Document{Pages: pages}.Bytes()
}

// BuildEncrypted returns a file holding pages that opens only with password.
func BuildEncrypted(password string, pages ...Page) []byte {
	return Document{Pages: pages, Password: password}.Bytes()
}

// fileID is the fixed first /ID entry; determinism keeps fixtures stable.
var fileID = []byte("go_pdfium-fixture")

// passwordPad is the padding string of the standard security handler.
var passwordPad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41, 0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80, 0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// permissions is /P: everything allowed.
const permissions int32 = -4

type writer struct {
	buf     bytes.Buffer
	offsets []int
	key     []byte
	next    int
	deflate bool
}

func (w *writer) alloc() int {
	w.next++
	return w.next
}

func (w *writer) object(id int, body string) {
	for len(w.offsets) <= id {
		w.offsets = append(w.offsets, 0)
	}
	w.offsets[id] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", id, body)
}

func (w *writer) stream(id int, dict string, data []byte) {
	if w.deflate {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		zw.Write(data)
		zw.Close()
		data = z.Bytes()
		dict += " /Filter /FlateDecode"
	}
	if w.key != nil {
		data = encrypt(w.key, id, data)
	}
	w.object(id, fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data))
}

// Bytes renders the file.
func (d Document) Bytes() []byte {
	w := &writer{deflate: d.Compress}
	w.buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	var trailerExtra string
	if d.UnsupportedSecurity {
		trailerExtra = " /Encrypt << /Filter /Standard /V 5 /R 6 /Length 256 /P -4 >>"
	} else if d.Password != "" {
		o := ownerEntry(d.Password)
		w.key = fileKey(d.Password, o)
		u := userEntry(w.key)
		trailerExtra = fmt.Sprintf(" /Encrypt << /Filter /Standard /V 2 /R 3 /Length 128 /P %d /O <%s> /U <%s> >>",
			permissions, hex.EncodeToString(o), hex.EncodeToString(u))
	}

	catalog, root := w.alloc(), w.alloc()
	w.object(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", root))

	kids := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", w.writePage(p, root))
	}
	tree := fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d", strings.Join(kids, " "), len(d.Pages))
	if d.MediaBox != ([4]float64{}) {
		tree += " /MediaBox " + numbers(d.MediaBox[:]...)
	}
	w.object(root, tree+" >>")

	xref := w.buf.Len()
	size := len(w.offsets)
	fmt.Fprintf(&w.buf, "xref\n0 %d\n0000000000 65535 f \n", size)
	for _, off := range w.offsets[1:] {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", off)
	}
	id := hex.EncodeToString(fileID)
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root %d 0 R /ID [<%s> <%s>]%s >>\nstartxref\n%d\n%%%%EOF\n",
		size, catalog, id, id, trailerExtra, xref)
	return w.buf.Bytes()
}

func (w *writer) writePage(p Page, parent int) int {
	id, content := w.alloc(), w.alloc()

	dict := fmt.Sprintf("<< /Type /Page /Parent %d 0 R", parent)
	if p.Width != 0 || p.Height != 0 {
		dict += " /MediaBox " + numbers(0, 0, p.Width, p.Height)
	}
	if p.CropBox != nil {
		dict += " /CropBox " + numbers(p.CropBox[:]...)
	}
	if p.Rotate != 0 {
		dict += fmt.Sprintf(" /Rotate %d", p.Rotate)
	}
	dict += fmt.Sprintf(" /Contents %d 0 R", content)

	var res []string
	if len(p.ExtGState) > 0 {
		var gs []string
		for _, name := range slices.Sorted(maps.Keys(p.ExtGState)) {
			gs = append(gs, fmt.Sprintf("/%s << %s >>", name, p.ExtGState[name]))
		}
		res = append(res, "/ExtGState << "+strings.Join(gs, " ")+" >>")
	}
	if len(p.Forms) > 0 {
		var xo []string
		for _, f := range p.Forms {
			fid := w.alloc()
			fd := "/Type /XObject /Subtype /Form /BBox " + numbers(f.BBox[:]...)
			if f.Matrix != nil {
				fd += " /Matrix " + numbers(f.Matrix[:]...)
			}
			w.stream(fid, fd, []byte(f.Content))
			xo = append(xo, fmt.Sprintf("/%s %d 0 R", f.Name, fid))
		}
		res = append(res, "/XObject << "+strings.Join(xo, " ")+" >>")
	}
	dict += " /Resources << " + strings.Join(res, " ") + " >>"

	if len(p.Annots) > 0 {
		annots := make([]string, len(p.Annots))
		for i, a := range p.Annots {
			annots[i] = w.annot(a)
		}
		dict += " /Annots [" + strings.Join(annots, " ") + "]"
	}

	w.stream(content, "", []byte(p.Content))
	w.object(id, dict+" >>")
	return id
}

func (w *writer) annot(a Annot) string {
	sub := a.Subtype
	if sub == "" {
		sub = "Square"
	}
	s := fmt.Sprintf("<< /Type /Annot /Subtype /%s /Rect %s", sub, numbers(a.Rect[:]...))
	if len(a.Color) > 0 {
		s += " /C " + numbers(a.Color...)
	}
	s += fmt.Sprintf(" /BS << /W %s >>", num(a.BorderWidth))
	flags := 4 // Print
	if a.Hidden {
		flags |= 2
	}
	s += fmt.Sprintf(" /F %d", flags)
	if a.Appearance != "" {
		id := w.alloc()
		bbox := numbers(0, 0, a.Rect[2]-a.Rect[0], a.Rect[3]-a.Rect[1])
		w.stream(id, "/Type /XObject /Subtype /Form /BBox "+bbox, []byte(a.Appearance))
		s += fmt.Sprintf(" /AP << /N %d 0 R >>", id)
	}
	return s + " >>"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func numbers(vs ...float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = num(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func pad(password string) []byte {
	b := append([]byte(password), passwordPad...)
	return b[:32]
}

// rc4Rounds applies the revision 3 cipher: RC4 under key, then 19 more
// passes under key XOR the round number.
func rc4Rounds(key, data []byte) {
	k := make([]byte, len(key))
	for i := 0; i <= 19; i++ {
		for j := range k {
			k[j] = key[j] ^ byte(i)
		}
		c, _ := rc4.NewCipher(k)
		c.XORKeyStream(data, data)
	}
}

// md5Rounds hashes b and then rehashes the digest 50 times.
func md5Rounds(b []byte) []byte {
	sum := md5.Sum(b)
	for i := 0; i < 50; i++ {
		sum = md5.Sum(sum[:])
	}
	return sum[:]
}

// ownerEntry computes /O with the owner password equal to the user password.
func ownerEntry(password string) []byte {
	o := pad(password)
	rc4Rounds(md5Rounds(pad(password)), o)
	return o
}

// permissionBytes is /P as the key derivation hashes it: the 32-bit two's
// complement value, low-order byte first.
func permissionBytes() []byte {
	p := permissions
	return binary.LittleEndian.AppendUint32(nil, uint32(p))
}

// fileKey derives the 128-bit document key.
func fileKey(password string, o []byte) []byte {
	h := md5.New()
	h.Write(pad(password))
	h.Write(o)
	h.Write(permissionBytes())
	h.Write(fileID)
	key := h.Sum(nil)
	for i := 0; i < 50; i++ {
		sum := md5.Sum(key)
		key = sum[:]
	}
	return key
}

// userEntry computes /U: the encrypted hash of the padding and file ID,
// followed by 16 arbitrary bytes.
func userEntry(key []byte) []byte {
	h := md5.New()
	h.Write(passwordPad)
	h.Write(fileID)
	u := h.Sum(nil)
	rc4Rounds(key, u)
	return append(u, passwordPad[:16]...)
}

// encrypt applies the per-object RC4 key of object id, generation 0.
func encrypt(key []byte, id int, data []byte) []byte {
	h := md5.New()
	h.Write(key)
	h.Write([]byte{byte(id), byte(id >> 8), byte(id >> 16), 0, 0})
	c, _ := rc4.NewCipher(h.Sum(nil))
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out
}
