package portal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/federal-archive/backend/internal/models"
	"github.com/DeafMist/federal-archive/backend/internal/query"
	"github.com/DeafMist/federal-archive/backend/internal/session"
)

func TestResolveFallsBackToHome(t *testing.T) {
	require.Equal(t, RouteTreaties, Resolve("treaties-resolutions"))
	require.Equal(t, RouteHome, Resolve("no-such-page"))
	require.Equal(t, RouteHome, Resolve(""))
}

func TestSearchViewsOfferExactlyThePlannerFilters(t *testing.T) {
	for _, c := range query.Categories {
		v := ViewFor(Route(c), AdminState{})
		require.Equal(t, KindSearch, v.Kind, c)
		require.NotNil(t, v.Search)
		require.Equal(t, c, v.Search.Category)

		var names []string
		for _, f := range v.Search.Filters {
			if f.Name == "documentCategories" {
				continue
			}
			names = append(names, f.Name)
		}
		require.ElementsMatch(t, query.FilterNames(c), names, c)
	}
}

func TestSelectOptionsComeFromCanonicalEnums(t *testing.T) {
	v := ViewFor(RouteJudicial, AdminState{})
	byName := map[string]FilterInput{}
	for _, f := range v.Search.Filters {
		byName[f.Name] = f
	}

	require.Equal(t, InputSelect, byName["court"].Kind)
	require.Equal(t, models.Courts, byName["court"].Options)
	require.Equal(t, models.CaseTypes, byName["caseType"].Options)
	require.Equal(t, "judicial-documents-results", v.Search.ResultsPanel)
	require.Equal(t, "Judicial Documents", v.Breadcrumb)
}

func TestHomeView(t *testing.T) {
	v := ViewFor(RouteHome, AdminState{})
	require.Equal(t, "Home", v.Breadcrumb)
	require.Equal(t, "home-search-results", v.Search.ResultsPanel)
	require.Equal(t, "Perform Search", v.Search.SearchLabel)
	require.NotNil(t, v.Search.Intro)

	last := v.Search.Filters[len(v.Search.Filters)-1]
	require.Equal(t, InputMultiSelect, last.Kind)
	require.Len(t, last.Options, len(models.DocTypes))
}

func TestAdminViewFollowsSessionState(t *testing.T) {
	loading := ViewFor(RouteAdmin, AdminState{Mode: session.AdminLoading})
	require.Equal(t, session.AdminLoading, loading.Admin.Mode)
	require.Nil(t, loading.Admin.Login)
	require.Nil(t, loading.Admin.Form)

	login := ViewFor(RouteAdmin, AdminState{Mode: session.AdminLogin})
	require.Equal(t, "Admin Login", login.Breadcrumb)
	require.NotNil(t, login.Admin.Login)
	require.Nil(t, login.Admin.Form)

	panel := ViewFor(RouteAdmin, AdminState{Mode: session.AdminPanel, UserID: "u1"})
	require.Equal(t, "Admin Panel", panel.Breadcrumb)
	require.Equal(t, "u1", panel.Admin.UserID)
	require.NotNil(t, panel.Admin.Form)
	require.False(t, panel.Admin.Form.Editing)
}

func TestStaticPages(t *testing.T) {
	help := ViewFor(RouteHelp, AdminState{})
	require.Equal(t, KindPage, help.Kind)
	require.Equal(t, "Archive Help & Guide", help.Page.Heading)

	faqs := ViewFor(RouteFAQs, AdminState{})
	require.Equal(t, "FAQs", faqs.Breadcrumb)
	require.Len(t, faqs.Page.Sections, 2)
	for _, s := range faqs.Page.Sections {
		require.Len(t, s.Questions, 2)
	}
}

func TestResultsPanelMatchesSearchView(t *testing.T) {
	for _, c := range query.Categories {
		require.Equal(t, ViewFor(Route(c), AdminState{}).Search.ResultsPanel, ResultsPanel(c), c)
	}
	require.Equal(t, "home-search-results", ResultsPanel(query.CategoryHome))
	require.Equal(t, "judicial-documents-results", ResultsPanel(query.CategoryJudicial))
}
