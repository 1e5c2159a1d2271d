// Package timestamp приводит метки времени из документов к единому типу time.Time.
package timestamp

import (
	"encoding/json"
	"time"
)

// Sentinel — нулевая метка времени (начало эпохи Unix, UTC).
// Возвращается для отсутствующих и нечитаемых значений: такие записи
// трактуются как «очень старые» и не попадают ни в одно окно отчёта.
var Sentinel = time.Unix(0, 0).UTC()

// Instanter описывает упакованную метку времени с методом-аксессором.
// В таком виде метки приходят из документов, выгруженных из старого
// документного хранилища.
type Instanter interface {
	ToTime() time.Time
}

// Unix — упакованное представление метки времени в документе: секунды и
// наносекунды от начала эпохи.
type Unix struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// ToTime возвращает метку времени в виде time.Time.
func (u Unix) ToTime() time.Time {
	return time.Unix(u.Seconds, int64(u.Nanos)).UTC()
}

// Normalize приводит значение метки времени из документа к time.Time.
// Поддерживаются четыре формы, проверяемые строго в этом порядке:
// отсутствующее значение, родной time.Time, строка RFC 3339 и упакованное
// значение с аксессором ToTime. Порядок важен: упакованный тип проверяется
// после родного, иначе обёртки поверх time.Time меняли бы поведение.
// Любая другая форма и нечитаемая строка дают Sentinel, ошибок не бывает.
func Normalize(v any) time.Time {
	switch t := v.(type) {
	case nil:
		return Sentinel
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return Sentinel
		}
		return parsed
	case Instanter:
		return t.ToTime()
	default:
		return Sentinel
	}
}

// Raw хранит метку времени документа в исходном представлении.
// Используется в полях моделей, чтобы решение о разборе принималось
// в одном месте — в Normalize.
type Raw struct {
	value any
}

// FromTime упаковывает готовый time.Time (путь для значений из колонок БД).
func FromTime(t time.Time) Raw {
	return Raw{value: t}
}

// Time возвращает нормализованную метку времени.
func (r Raw) Time() time.Time {
	return Normalize(r.value)
}

// IsZero сообщает, было ли значение в документе вообще.
func (r Raw) IsZero() bool {
	return r.value == nil
}

// UnmarshalJSON разбирает поле документа, сохраняя исходную форму значения.
// Объект вида {"seconds":..,"nanos":..} распаковывается в Unix, строка
// остаётся строкой, null — отсутствием значения. Прочие формы сохраняются
// как есть и нормализуются в Sentinel.
func (r *Raw) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		r.value = nil
		return nil
	}

	if len(b) > 0 && b[0] == '{' {
		var u Unix
		if err := json.Unmarshal(b, &u); err != nil {
			return err
		}
		r.value = u
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.value = s
		return nil
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	r.value = v
	return nil
}

// MarshalJSON отдаёт метку наружу в виде строки RFC 3339, отсутствующее
// значение — как null.
func (r Raw) MarshalJSON() ([]byte, error) {
	if r.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.Time().Format(time.RFC3339))
}
