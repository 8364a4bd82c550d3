package domain

// ConversationState — состояние диалога пользователя с админом.
// Хранится только в памяти процесса, после рестарта все снова Idle.
type ConversationState byte

const (
	StateIdle ConversationState = iota
	StateCommenting
)

func (s ConversationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCommenting:
		return "commenting"
	}
	return "unknown"
}
