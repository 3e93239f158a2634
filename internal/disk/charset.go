package disk

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// LookupCharset resolves a character set name. The empty name selects ISO-8859-1.
func LookupCharset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown character set %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported character set %q", name)
	}
	return enc, nil
}

// codePages maps the Windows code page numbers found in the machine integer
// record to IANA names
var codePages = map[int32]string{
	437:   "IBM437",
	850:   "IBM850",
	874:   "windows-874",
	932:   "Shift_JIS",
	936:   "GBK",
	949:   "EUC-KR",
	950:   "Big5",
	1250:  "windows-1250",
	1251:  "windows-1251",
	1252:  "windows-1252",
	1253:  "windows-1253",
	1254:  "windows-1254",
	1255:  "windows-1255",
	1256:  "windows-1256",
	1257:  "windows-1257",
	1258:  "windows-1258",
	20127: "US-ASCII",
	28591: "ISO-8859-1",
	28592: "ISO-8859-2",
	28605: "ISO-8859-15",
	65001: "UTF-8",
}

// CodePageName returns the IANA name for the character code of the machine
// integer record. Codes 2 and 3 (7 and 8 bit ASCII) map to ISO-8859-1.
func CodePageName(code int32) (string, bool) {
	if code == 2 || code == 3 {
		return "ISO-8859-1", true
	}
	name, ok := codePages[code]
	return name, ok
}

// CharsetForCodePage resolves the character code of the machine integer record.
// Unknown codes report false.
func CharsetForCodePage(code int32) (encoding.Encoding, bool) {
	name, ok := CodePageName(code)
	if !ok {
		return nil, false
	}
	enc, err := LookupCharset(name)
	if err != nil {
		return nil, false
	}
	return enc, true
}
