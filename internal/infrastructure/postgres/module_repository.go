package postgres

import (
	"context"
	"fmt"
)

// ModuleRepository consulta los módulos contratados por empresa (company_modules).
type ModuleRepository struct {
	q Querier
}

// NewModuleRepository construye el adaptador.
func NewModuleRepository(q Querier) *ModuleRepository {
	return &ModuleRepository{q: q}
}

// HasActiveModule informa si la empresa tiene el módulo activo y sin vencer.
func (r *ModuleRepository) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM company_modules
			 WHERE company_id  = $1
			   AND module_name = $2
			   AND is_active   = true
			   AND (expires_at IS NULL OR expires_at > now())
		)`
	var active bool
	if err := r.q.QueryRow(ctx, query, companyID, moduleName).Scan(&active); err != nil {
		return false, fmt.Errorf("check module %s: %w", moduleName, err)
	}
	return active, nil
}
