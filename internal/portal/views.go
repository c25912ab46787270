package portal

import (
	"github.com/DeafMist/federal-archive/backend/internal/forms"
	"github.com/DeafMist/federal-archive/backend/internal/models"
	"github.com/DeafMist/federal-archive/backend/internal/query"
	"github.com/DeafMist/federal-archive/backend/internal/session"
)

// Route names a portal page.
type Route string

const (
	RouteHome        Route = "home"
	RouteFederalLaws Route = "federal-laws"
	RouteExecutive   Route = "executive-documents"
	RouteJudicial    Route = "judicial-documents"
	RouteTreaties    Route = "treaties-resolutions"
	RouteAdmin       Route = "admin-panel"
	RouteHelp        Route = "archive-help"
	RouteFAQs        Route = "faqs"
)

// Routes lists every route in navigation order.
var Routes = []Route{RouteHome, RouteFederalLaws, RouteExecutive, RouteJudicial, RouteTreaties, RouteAdmin, RouteHelp, RouteFAQs}

// Resolve maps a requested route name to a route. Unknown names land on home.
func Resolve(name string) Route {
	for _, r := range Routes {
		if string(r) == name {
			return r
		}
	}
	return RouteHome
}

// Kind tags the variant of a View.
type Kind string

const (
	KindSearch Kind = "search"
	KindAdmin  Kind = "admin"
	KindPage   Kind = "page"
)

// View is the descriptor of one route. Exactly one of Search, Admin and Page is set,
// matching Kind.
type View struct {
	Kind       Kind        `json:"kind"`
	Route      Route       `json:"route"`
	Breadcrumb string      `json:"breadcrumb"`
	Search     *SearchView `json:"search,omitempty"`
	Admin      *AdminView  `json:"admin,omitempty"`
	Page       *Page       `json:"page,omitempty"`
}

// InputKind is the widget of a filter input.
type InputKind string

const (
	InputText        InputKind = "text"
	InputYear        InputKind = "year"
	InputSelect      InputKind = "select"
	InputMultiSelect InputKind = "multiselect"
)

// FilterInput is one search filter control.
type FilterInput struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Kind        InputKind `json:"kind"`
	Options     []string  `json:"options,omitempty"`
	EmptyOption string    `json:"emptyOption,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// SearchView describes a category search page.
type SearchView struct {
	Category     query.Category `json:"category"`
	Heading      string         `json:"heading"`
	Intro        *Page          `json:"intro,omitempty"`
	Filters      []FilterInput  `json:"filters"`
	SearchLabel  string         `json:"searchLabel"`
	ClearLabel   string         `json:"clearLabel"`
	ResultsTitle string         `json:"resultsTitle"`
	ResultsPanel string         `json:"resultsPanel"`
}

// AdminView describes the admin route in the session's current state.
type AdminView struct {
	Mode    session.AdminView `json:"mode"`
	Heading string            `json:"heading"`
	UserID  string            `json:"userId,omitempty"`
	Login   *LoginForm        `json:"login,omitempty"`
	Form    *forms.View       `json:"form,omitempty"`
	Notice  string            `json:"notice,omitempty"`
}

// LoginForm describes the admin sign-in form.
type LoginForm struct {
	EmailPlaceholder    string `json:"emailPlaceholder"`
	PasswordPlaceholder string `json:"passwordPlaceholder"`
	SubmitLabel         string `json:"submitLabel"`
}

// AdminState is what the admin view needs to know about the session.
type AdminState struct {
	Mode   session.AdminView
	UserID string
}

// ViewFor builds the descriptor of route.
func ViewFor(route Route, admin AdminState) View {
	switch route {
	case RouteAdmin:
		return adminView(admin)
	case RouteHelp:
		return View{Kind: KindPage, Route: route, Breadcrumb: "Archive Help & Guide", Page: helpPage()}
	case RouteFAQs:
		return View{Kind: KindPage, Route: route, Breadcrumb: "FAQs", Page: faqPage()}
	}

	search, breadcrumb := searchView(query.Category(route))
	return View{Kind: KindSearch, Route: route, Breadcrumb: breadcrumb, Search: search}
}

func adminView(admin AdminState) View {
	v := View{Kind: KindAdmin, Route: RouteAdmin}
	switch admin.Mode {
	case session.AdminPanel:
		form := forms.NewForm().View()
		v.Breadcrumb = "Admin Panel"
		v.Admin = &AdminView{Mode: admin.Mode, Heading: "Admin Panel", UserID: admin.UserID, Form: &form}
	case session.AdminLogin:
		v.Breadcrumb = "Admin Login"
		v.Admin = &AdminView{
			Mode:    admin.Mode,
			Heading: "Admin Login",
			Login: &LoginForm{
				EmailPlaceholder:    "admin@example.com",
				PasswordPlaceholder: "********",
				SubmitLabel:         "Login",
			},
			Notice: "Authentication required to access admin features. Please log in.",
		}
	default:
		v.Breadcrumb = "Admin"
		v.Admin = &AdminView{Mode: session.AdminLoading, Heading: "Admin", Notice: "Loading..."}
	}
	return v
}

func yearInputs(fromLabel string) []FilterInput {
	return []FilterInput{
		{Name: "yearFrom", Label: fromLabel, Kind: InputYear, Placeholder: "YYYY"},
		{Name: "yearTo", Label: "Year Range (To)", Kind: InputYear, Placeholder: "YYYY"},
	}
}

func typeNames() []string {
	out := make([]string, 0, len(models.DocTypes))
	for _, t := range models.DocTypes {
		out = append(out, string(t))
	}
	return out
}

// ResultsPanel names the results panel of a search category.
func ResultsPanel(category query.Category) string {
	v, _ := searchView(category)
	return v.ResultsPanel
}

func searchView(category query.Category) (*SearchView, string) {
	v := &SearchView{
		Category:     category,
		ClearLabel:   "Clear Filters",
		ResultsTitle: "Search Results",
		ResultsPanel: string(category) + "-results",
	}

	switch category {
	case query.CategoryFederalLaws:
		v.Heading = "Search Federal Laws"
		v.SearchLabel = "Search Laws"
		v.Filters = append([]FilterInput{
			{Name: "codeTitle", Label: "Code Title", Kind: InputSelect, Options: models.CodeTitles, EmptyOption: "Select Title"},
			{Name: "status", Label: "Status", Kind: InputSelect, Options: models.FederalLawStatuses, EmptyOption: "Select Status"},
		}, append(yearInputs("Year Range (From)"),
			FilterInput{Name: "keywords", Label: "Keywords / Title / Bill Number", Kind: InputText, Placeholder: "e.g., environmental, bill 123"},
			FilterInput{Name: "sponsor", Label: "Sponsor / Author", Kind: InputText, Placeholder: "e.g., Ivanov"},
		)...)
		return v, "Federal Laws"

	case query.CategoryExecutive:
		v.Heading = "Search Executive Documents"
		v.SearchLabel = "Search Executive Docs"
		v.Filters = append([]FilterInput{
			{Name: "issuingAuthority", Label: "Issuing Authority", Kind: InputText, Placeholder: "e.g., President, Ministry of Justice"},
			{Name: "documentType", Label: "Document Type", Kind: InputText, Placeholder: "e.g., Order, Decree"},
		}, append(yearInputs("Year Range (From)"),
			FilterInput{Name: "keywords", Label: "Keywords / Title / Document ID", Kind: InputText, Placeholder: "e.g., economic stimulus, ID 456"},
		)...)
		return v, "Executive Documents"

	case query.CategoryJudicial:
		v.Heading = "Search Judicial Documents"
		v.SearchLabel = "Search Judicial Docs"
		v.Filters = append([]FilterInput{
			{Name: "court", Label: "Court", Kind: InputSelect, Options: models.Courts, EmptyOption: "Select Court"},
			{Name: "judgeProsecutor", Label: "Judge / Prosecutor", Kind: InputText, Placeholder: "e.g., Petrov, Sidorova"},
			{Name: "caseType", Label: "Case Type", Kind: InputSelect, Options: models.CaseTypes, EmptyOption: "Select Type"},
		}, append(yearInputs("Year Range (From)"),
			FilterInput{Name: "keywords", Label: "Keywords / Case Number", Kind: InputText, Placeholder: "e.g., property dispute, case 123/2024"},
		)...)
		return v, "Judicial Documents"

	case query.CategoryTreaties:
		v.Heading = "Search Treaties & Resolutions"
		v.SearchLabel = "Search Treaties & Resolutions"
		v.Filters = append([]FilterInput{
			{Name: "documentType", Label: "Document Type", Kind: InputSelect, Options: models.TreatyKinds, EmptyOption: "Select Type"},
			{Name: "status", Label: "Status", Kind: InputSelect, Options: models.TreatyStatuses, EmptyOption: "Select Status"},
		}, append(yearInputs("Year Range (From)"),
			FilterInput{Name: "partiesInvolved", Label: "Parties Involved", Kind: InputText, Placeholder: "e.g., Russia, UN, USA"},
			FilterInput{Name: "titleNumber", Label: "Title / Number", Kind: InputText, Placeholder: "e.g., Climate Agreement, Resolution 789"},
			FilterInput{Name: "keywords", Label: "Keywords / Topics", Kind: InputText, Placeholder: "e.g., human rights, trade"},
		)...)
		return v, "Treaties & Resolutions"
	}

	v.Category = query.CategoryHome
	v.Heading = "Quick Search Across All Documents"
	v.Intro = homeIntro()
	v.SearchLabel = "Perform Search"
	v.ResultsPanel = "home-search-results"
	v.Filters = append([]FilterInput{
		{Name: "keywords", Label: "Keywords / Full Text", Kind: InputText, Placeholder: "Global keyword search"},
	}, append(yearInputs("Date Range (From)"),
		FilterInput{Name: "documentCategories", Label: "Document Categories", Kind: InputMultiSelect, Options: typeNames()},
	)...)
	return v, "Home"
}
