package cache

// Entity names shared by the public cache middleware and the admin
// handlers that invalidate it.
const (
	Jobs       = "jobs"
	Catalogues = "catalogues"
	Products   = "products"
	Media      = "media"
	Settings   = "settings"
)
