package routes

import (
	"github.com/shashiranjanraj/vipani/app/controllers"
	"github.com/shashiranjanraj/vipani/pkg/auth"
	"github.com/shashiranjanraj/vipani/pkg/middleware"
	"github.com/shashiranjanraj/vipani/pkg/rbac"
	"github.com/shashiranjanraj/vipani/pkg/router"
)

// RegisterAPI mounts the product resource. Reads are open to any
// authenticated user; writes require the SHOP_OWNER role, and ownership of
// the individual product is enforced inside the service.
func RegisterAPI(r *router.Router, products *controllers.ProductController) {
	reads := rbac.HasRole(auth.RoleUser, auth.RoleShopOwner)
	writes := rbac.HasRole(auth.RoleShopOwner)

	grp := r.Group("/products", middleware.Auth)

	grp.Post("", "products.create", products.Create, writes)
	grp.Get("", "products.list", products.List, reads)
	grp.Get("/{id}", "products.show", products.Show, reads)
	grp.Put("/{id}", "products.update", products.Update, writes)
	grp.Delete("/{id}", "products.delete", products.Delete, writes)
}
