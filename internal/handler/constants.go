package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteUsers is the users route.
	RouteUsers = "/users"
	// RouteChangePassword is the change-password route.
	RouteChangePassword = "/change-password"
	// RouteLogs is the visit log route.
	RouteLogs = "/logs"
	// RouteStatsPages is the per-page statistics route.
	RouteStatsPages = "/stats/pages"
	// RouteStatsUsers is the per-user statistics route.
	RouteStatsUsers = "/stats/users"
	// RouteDocs is the handbook route.
	RouteDocs = "/docs"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixEdit is the suffix for edit routes.
	RouteSuffixEdit = "/edit"
	// RouteSuffixDelete is the suffix for delete routes.
	RouteSuffixDelete = "/delete"
	// RouteSuffixExport is the suffix for CSV export routes.
	RouteSuffixExport = "/export"

	// RouteUsersID is the users ID route pattern.
	RouteUsersID = RouteUsers + RouteParamID

	// RouteDemoURLParams is the URL parameter inspection demo route.
	RouteDemoURLParams = "/demo/url-params"
	// RouteDemoHeaders is the header inspection demo route.
	RouteDemoHeaders = "/demo/headers"
	// RouteDemoCookies is the cookie toggling demo route.
	RouteDemoCookies = "/demo/cookies"
	// RouteDemoForm is the form echo demo route.
	RouteDemoForm = "/demo/form"
	// RouteDemoPhone is the phone formatting demo route.
	RouteDemoPhone = "/demo/phone"
)

const (
	redirectRoot           = RouteRoot
	redirectLogin          = RouteLogin
	redirectUsersNew       = RouteUsers + RouteSuffixNew
	redirectChangePassword = RouteChangePassword

	redirectUsersID     = RouteUsers + "/%d"
	redirectUsersIDEdit = redirectUsersID + RouteSuffixEdit
)

// User-visible notices shared across handlers.
const (
	noticeInsufficientRights = "You do not have enough rights to access this page"
	noticeCannotChangeRole   = "You cannot change the role"
	noticeInvalidCredentials = "Invalid login or password"
	noticeUserNotFound       = "User not found"
)
