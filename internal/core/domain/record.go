// internal/core/domain/record.go
package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Record es una entrada de la caché de resultados: campos JSON de nivel
// superior por host. Observaciones pasivas y escaneos activos escriben
// subconjuntos distintos de claves sobre la misma entrada.
type Record map[string]json.RawMessage

// Merge devuelve una copia de r con las claves de newer sobrescritas.
// Las claves que solo existen en r sobreviven (fusión superficial).
func (r Record) Merge(newer Record) Record {
	out := make(Record, len(r)+len(newer))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range newer {
		out[k] = v
	}
	return out
}

// Clone devuelve una copia superficial.
func (r Record) Clone() Record {
	return Record{}.Merge(r)
}

// Set codifica v bajo key.
func (r Record) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRecord, key, err)
	}
	r[key] = raw
	return nil
}

// Decode decodifica key en v. Devuelve false si la clave no existe.
func (r Record) Decode(key string, v any) (bool, error) {
	raw, ok := r[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, key, err)
	}
	return true, nil
}

// Findings devuelve la lista "vulns" almacenada, vacía si no hay.
func (r Record) Findings() []Finding {
	var out []Finding
	if _, err := r.Decode("vulns", &out); err != nil || out == nil {
		return []Finding{}
	}
	return out
}

// Keys devuelve las claves ordenadas.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnknownRecord es lo que se devuelve para un host sin entrada en caché.
func UnknownRecord(host string) Record {
	rec := Record{}
	_ = rec.Set("domain", host)
	_ = rec.Set("risk", "UNKNOWN")
	return rec
}
