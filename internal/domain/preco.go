package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// A API upstream (e do carrinho legado) serializa preços ora como número
// (12.9), ora como string decimal ("50.00"). parseFlexFloat aceita os dois
// formatos e reporta se o valor pôde ser interpretado. Valores ilegíveis
// viram 0 (nunca NaN) e cabe ao chamador registrar o aviso.
func parseFlexFloat(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	// Caso 1: número JSON puro
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		if math.IsNaN(num) || math.IsInf(num, 0) {
			return 0, false
		}
		return num, true
	}

	// Caso 2: string decimal ("50.00")
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if v, convErr := strconv.ParseFloat(str, 64); convErr == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, true
		}
	}

	return 0, false
}
