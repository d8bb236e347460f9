package moeda

import (
	"math"
	"strconv"
	"strings"
)

// Format formata um valor numérico como preço, com separadores configuráveis.
// Valores não finitos são tratados como 0.
func Format(value float64, decimals int, currency, decimalSep, thousandsSep string) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	if decimals < 0 {
		decimals = 2
	}

	negative := value < 0
	fixed := strconv.FormatFloat(math.Abs(value), 'f', decimals, 64)

	intPart := fixed
	fracPart := ""
	if idx := strings.IndexByte(fixed, '.'); idx >= 0 {
		intPart = fixed[:idx]
		fracPart = fixed[idx+1:]
	}

	// Insere o separador de milhares a cada três dígitos, da direita para a esquerda.
	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(thousandsSep)
		}
		b.WriteRune(digit)
	}

	result := currency + " " + b.String()
	if decimals > 0 {
		result += decimalSep + fracPart
	}
	if negative {
		result = "-" + result
	}
	return result
}

// FormatPreco formata um valor no padrão brasileiro: "R$ 1.234,56".
func FormatPreco(value float64) string {
	return Format(value, 2, "R$", ",", ".")
}
