package serialline

import (
	"bytes"
	"strings"
)

// lineBuffer накапливает принятые байты до получения перевода строки.
// Принадлежит только циклу чтения, без блокировок.
// max ограничивает незавершённый хвост; 0 означает без ограничения.
type lineBuffer struct {
	buf []byte
	max int
}

// push добавляет фрагмент и возвращает все завершённые строки (обрезанные).
// Хвост после последнего '\n' остаётся в буфере до следующего фрагмента.
func (b *lineBuffer) push(chunk []byte) []string {
	b.buf = append(b.buf, chunk...)

	var lines []string
	for {
		idx := bytes.IndexByte(b.buf, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, decodeLine(b.buf[:idx]))
		b.buf = b.buf[idx+1:]
	}
	if len(b.buf) == 0 {
		b.buf = nil
	}
	return lines
}

// pending возвращает незавершённый хвост
func (b *lineBuffer) pending() string {
	return strings.ToValidUTF8(string(b.buf), "�")
}

// overflowed сообщает, что хвост без '\n' превысил max
func (b *lineBuffer) overflowed() bool {
	return b.max > 0 && len(b.buf) > b.max
}

func (b *lineBuffer) reset() {
	b.buf = nil
}

// decodeLine декодирует целую строку, заменяя некорректные UTF-8 последовательности.
// Символ, разрезанный между двумя чтениями, к этому моменту уже собран.
func decodeLine(p []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(p), "�"))
}
