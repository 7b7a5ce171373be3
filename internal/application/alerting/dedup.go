package alerting

// Deduplicator responde si un producto ya tiene una alerta abierta.
type Deduplicator interface {
	HasOpenAlert(productID string) bool
}

// openIndex índice vivo productID -> id de la alerta abierta.
// Se mantiene incrementalmente en cada alta, reconocimiento y expulsión; nunca se recalcula
// recorriendo el almacén. No es seguro para uso concurrente: lo protege el lock del AlertStore.
type openIndex map[string]string

func (ix openIndex) has(productID string) bool {
	_, ok := ix[productID]
	return ok
}

func (ix openIndex) add(productID, alertID string) { ix[productID] = alertID }

// remove borra la entrada solo si apunta a alertID.
func (ix openIndex) remove(productID, alertID string) {
	if ix[productID] == alertID {
		delete(ix, productID)
	}
}
