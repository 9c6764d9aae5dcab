package pinpad

import (
	"strings"
)

// Метки полей в выводе процесса терминала
const (
	LabelMessageType      = "Tipo de mensaje: "
	LabelResponseCode     = "Código de Respuesta: "
	LabelResponseMessage  = "Mensaje de Respuesta: "
	LabelAuthorization    = "Autorizacion: "
	LabelBatch            = "Lote: "
	LabelAuthResponseCode = "Código respuesta Aut: "
	LabelAcquirer         = "Red adquiriente: "
	LabelAdvertising      = "Publicidad: "
	LabelTerminalID       = "TID: "
	LabelMerchantID       = "MID: "
	LabelFrame            = "Trama: "
	LabelReadMode         = "Modo lectura: "
	LabelPIN              = "PIN: "
	LabelCardGroup        = "Grupo tarjeta: "
)

// Transaction результат транзакции. Отсутствующие поля: пустые строки.
type Transaction struct {
	MessageType      string `json:"TipoMensaje"`
	ResponseCode     string `json:"CodigoRespuesta"`
	ResponseMessage  string `json:"MensajeRespuestaAut"`
	Authorization    string `json:"Autorizacion"`
	Batch            string `json:"Lote"`
	AuthResponseCode string `json:"CodigoRespuestaAut"`
	Acquirer         string `json:"RedAdquirente"`
	Advertising      string `json:"Publicidad"`
	TerminalID       string `json:"TID"`
	MerchantID       string `json:"MID"`
	Frame            string `json:"Trama"`
	ReadMode         string `json:"ModoLectura"`
	PIN              string `json:"PIN"`
	CardGroup        string `json:"NombreGrupoTarjeta"`
}

// Extract возвращает значение после первой метки label до конца строки.
// Если метки нет, возвращается пустая строка.
func Extract(text, label string) string {
	start := strings.Index(text, label)
	if start < 0 {
		return ""
	}
	after := text[start+len(label):]
	if end := strings.IndexByte(after, '\n'); end >= 0 {
		after = after[:end]
	}
	return strings.TrimSpace(after)
}

// ParseTransaction собирает Transaction из вывода процесса. Никогда не завершается ошибкой.
func ParseTransaction(output string) Transaction {
	return Transaction{
		MessageType:      Extract(output, LabelMessageType),
		ResponseCode:     Extract(output, LabelResponseCode),
		ResponseMessage:  Extract(output, LabelResponseMessage),
		Authorization:    Extract(output, LabelAuthorization),
		Batch:            Extract(output, LabelBatch),
		AuthResponseCode: Extract(output, LabelAuthResponseCode),
		Acquirer:         Extract(output, LabelAcquirer),
		Advertising:      Extract(output, LabelAdvertising),
		TerminalID:       Extract(output, LabelTerminalID),
		MerchantID:       Extract(output, LabelMerchantID),
		Frame:            Extract(output, LabelFrame),
		ReadMode:         Extract(output, LabelReadMode),
		PIN:              Extract(output, LabelPIN),
		CardGroup:        Extract(output, LabelCardGroup),
	}
}
