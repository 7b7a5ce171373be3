package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrAlertNotFound    = errors.New("alerta no encontrada")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrValidation       = errors.New("configuración de umbrales inválida")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrPermissionDenied = errors.New("permiso denegado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrPersistence      = errors.New("error de persistencia")
	ErrEvaluation       = errors.New("ítem de inventario no evaluable")
)
