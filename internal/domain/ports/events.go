package ports

// EventEmitter доставляет события оболочке киоска (UI)
type EventEmitter interface {
	// Emit публикует событие name с полезной нагрузкой payload (сериализуется в JSON)
	Emit(name string, payload interface{}) error
}
