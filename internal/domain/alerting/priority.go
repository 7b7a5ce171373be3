package alerting

import "github.com/jhoicas/inventario-alertas/internal/domain/entity"

// ResolvePriority elige el único umbral ganador entre los disparados.
// Gana la mayor severidad; con igual severidad gana el primero en orden de evaluación.
// ok es false si fired está vacío.
func ResolvePriority(fired []entity.Threshold) (winner entity.Threshold, ok bool) {
	for i, t := range fired {
		if i == 0 || t.Severity.Rank() > winner.Severity.Rank() {
			winner = t
		}
	}
	return winner, len(fired) > 0
}
