package netutil

// LogOption is a bitmask selecting which transport operations a logged
// decorator records.
type LogOption uint8

const (
	LogRead LogOption = 1 << iota
	LogWrite

	LogNone LogOption = 0
	LogAll            = LogRead | LogWrite
)
