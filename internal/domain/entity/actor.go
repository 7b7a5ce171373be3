package entity

// Roles conocidos. Solo superadmin y admin pueden modificar la configuración de alertas.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleBodeguero  = "bodeguero"
	RoleVendedor   = "vendedor"
	RoleUser       = "user"
)

// Actor identidad que ejecuta una operación (provista por el subsistema de autenticación).
type Actor struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	Role      string `json:"role"`
}
