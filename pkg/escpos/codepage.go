package escpos

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// codePage связывает кодировку x/text с номером таблицы ESC t
type codePage struct {
	charmap *charmap.Charmap
	table   byte
}

var codePages = map[string]codePage{
	"cp437":        {charmap.CodePage437, 0},
	"cp850":        {charmap.CodePage850, 2},
	"cp858":        {charmap.CodePage858, 19},
	"windows-1252": {charmap.Windows1252, 16},
}

func lookupCodePage(name string) (*codePage, error) {
	if name == "" {
		return nil, nil
	}
	cp, ok := codePages[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodePage, name)
	}
	return &cp, nil
}

// encode перекодирует UTF-8 в однобайтовую таблицу принтера.
// Неподдерживаемые символы заменяются, а не обрывают печать.
func (cp *codePage) encode(s string) []byte {
	enc := encoding.ReplaceUnsupported(cp.charmap.NewEncoder())
	out, _, err := transform.Bytes(enc, []byte(s))
	if err != nil {
		// ReplaceUnsupported не возвращает ошибок для корректного UTF-8
		return []byte(s)
	}
	return out
}
