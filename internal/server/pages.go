package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crusade-dev/crusaded/internal/auth"
)

// Page identifies one navigable page of the application. The original UI
// dispatched on page-name strings; a typed identifier gives the compiler a
// say: registerPage fails to build when a new Page has no handler.
type Page int

const (
	PageDashboard Page = iota
	PageLogBattle
	PageRecentBattles
	PageRules
)

// AllPages lists every page in sidebar order
var AllPages = []Page{PageDashboard, PageLogBattle, PageRecentBattles, PageRules}

// Slug returns the page's URL fragment
func (p Page) Slug() string {
	switch p {
	case PageDashboard:
		return "dashboard"
	case PageLogBattle:
		return "log-battle"
	case PageRecentBattles:
		return "recent-battles"
	case PageRules:
		return "rules"
	}
	return ""
}

// Title returns the page's display title
func (p Page) Title() string {
	switch p {
	case PageDashboard:
		return "Campaign Dashboard"
	case PageLogBattle:
		return "Log a Battle"
	case PageRecentBattles:
		return "Recent Battles"
	case PageRules:
		return "Rules"
	}
	return ""
}

// RequiresAuth reports whether the page needs a signed-in user
func (p Page) RequiresAuth() bool {
	switch p {
	case PageLogBattle, PageRecentBattles:
		return true
	}
	return false
}

// PageInfo is the page registry entry returned to clients
type PageInfo struct {
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	RequiresAuth bool   `json:"requires_auth"`
}

// VisiblePages returns the page registry for a session. All pages stay
// listed for anonymous sessions; the auth flag tells the client which ones
// will ask for a login.
func VisiblePages(session auth.Session) []PageInfo {
	infos := make([]PageInfo, 0, len(AllPages))
	for _, p := range AllPages {
		infos = append(infos, PageInfo{
			Slug:         p.Slug(),
			Title:        p.Title(),
			RequiresAuth: p.RequiresAuth(),
		})
	}
	return infos
}

// listPages returns the page registry for the current session
func (s *Server) listPages(c *gin.Context) {
	session, _ := GetSession(c)
	c.JSON(http.StatusOK, VisiblePages(session))
}

// registerPage wires a page's data route. Pages requiring a signed-in user
// get the auth middleware in front of their handler.
func (s *Server) registerPage(p Page) {
	var handler gin.HandlerFunc
	switch p {
	case PageDashboard:
		handler = s.getDashboard
	case PageLogBattle:
		handler = s.getLogBattleForm
	case PageRecentBattles:
		handler = s.listBattles
	case PageRules:
		handler = s.getRules
	}

	route := "/api/pages/" + p.Slug()
	if p.RequiresAuth() {
		s.router.GET(route, RequireAuthMiddleware(s.logger), handler)
		return
	}
	s.router.GET(route, handler)
}
