package shared

import "github.com/slotwise/slotwise/internal/authz"

// Catalog and media permissions.
const (
	PermCatalogManage authz.Permission = "catalog.manage"
	PermCatalogView   authz.Permission = "catalog.view"

	PermGalleriesManage authz.Permission = "galleries.manage"

	PermNotificationsManage authz.Permission = "notifications.manage"
	PermNotificationsSend   authz.Permission = "notifications.send"
)

// CatalogScopes lists all permissions related to the service catalog and media.
func CatalogScopes() []authz.Permission {
	return []authz.Permission{
		PermCatalogManage,
		PermCatalogView,
		PermGalleriesManage,
		PermNotificationsManage,
		PermNotificationsSend,
	}
}
