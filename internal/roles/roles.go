package roles

import (
	"github.com/subivo/gatehouse"
)

// realmRoleMapping translates the identity provider's realm role names to
// application roles
var realmRoleMapping = map[string]gatehouse.Role{
	"Administrador": gatehouse.RoleAdmin,
	"Subastador":    gatehouse.RoleAuctioneer,
	"Postor":        gatehouse.RoleBidder,
	"Soporte":       gatehouse.RoleSupport,
}

// permissionsByRole is the fixed capability table for each application role;
// roles without an entry (including guest) have no permissions
var permissionsByRole = map[gatehouse.Role][]string{
	gatehouse.RoleAdmin: {
		"gestionar usuarios",
		"gestionar roles y permisos",
		"administrar subastas",
		"gestionar reportes",
		"administrar medios de pago",
		"gestionar reclamos y disputas",
		"visualizar historial de transacciones",
	},
	gatehouse.RoleAuctioneer: {
		"crear y administrar subastas",
		"configurar productos",
		"definir reglas de participación",
		"validar pujas",
		"notificar ganadores",
		"revisar reclamos",
	},
	gatehouse.RoleBidder: {
		"explorar subastas",
		"realizar pujas",
		"pagar productos ganados",
		"reclamar premios",
		"presentar reclamos",
		"visualizar historial de compras y pujas",
	},
	gatehouse.RoleSupport: {
		"resolver reclamos",
		"gestionar estados de disputas",
		"revisar reportes de actividad y seguridad",
		"solucionar problemas de acceso y pagos",
	},
}

// Map returns the application role for the first realm role (in
// provider-supplied order) that has a mapping; sessions with no mapped realm
// role are treated as guests.
func Map(realmRoles []string) gatehouse.Role {
	for _, r := range realmRoles {
		if mapped, ok := realmRoleMapping[r]; ok {
			return mapped
		}
	}
	return gatehouse.RoleGuest
}

// PermissionsFor returns the static permission set for a role.
func PermissionsFor(role gatehouse.Role) []string {
	return permissionsByRole[role]
}
