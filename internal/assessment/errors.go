package assessment

import (
	"errors"
	"fmt"
)

// Ошибки ядра различимы по виду: view-слой показывает ValidationError
// у конкретного поля, ConsistencyError — как отказ всей операции.
var ErrNotFound = errors.New("not found")

// ValidationError — отклонённая запись (уровень вне 1..5, дубликат, чужая организация).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// ConsistencyError — нарушение инварианта закрытия раунда; транзакция
// откатывается целиком, частичный roll-forward не коммитится никогда.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return "consistency violation: " + e.Reason
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConsistency(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
