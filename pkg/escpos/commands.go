package escpos

// Управляющие последовательности ESC/POS
const (
	CmdReset       = "\x1b\x40"     // ESC @, сброс принтера
	CmdAlignLeft   = "\x1b\x61\x00" // ESC a 0
	CmdAlignCenter = "\x1b\x61\x01" // ESC a 1
	CmdDoubleSize  = "\x1d\x21\x11" // GS !, двойная ширина и высота
	CmdNormalSize  = "\x1d\x21\x00" // GS !, обычный размер
	CmdFullCut     = "\x1d\x56\x00" // GS V 0, полная отрезка
)

// selectCodePage формирует ESC t n
func selectCodePage(n byte) string {
	return string([]byte{0x1b, 0x74, n})
}
