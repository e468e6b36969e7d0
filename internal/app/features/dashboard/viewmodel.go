package dashboard

import (
	"github.com/dalemusser/hydrotrim/internal/app/system/translations"
	"github.com/dalemusser/hydrotrim/internal/app/system/viewdata"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
)

// pageData is the full dashboard page.
type pageData struct {
	viewdata.BaseVM

	ViewID  string
	Sidebar sidebarData
	Panel   panelData
}

// sidebarData is the navigation column, swapped on its own when the
// reports menu toggles. OOB marks it for an out-of-band swap riding along
// with a panel response.
type sidebarData struct {
	ViewID          string
	T               translations.Labels
	CSRFToken       string
	ReportsMenuOpen bool
	Diseases        []diseaseLink
	OOB             bool
}

// selectData is the response to a disease selection: the new panel plus
// the sidebar with its highlight moved.
type selectData struct {
	Panel   panelData
	Sidebar sidebarData
}

type diseaseLink struct {
	Key      string
	Label    string
	Selected bool
}

// panelData is the main content area: either the overview or the
// selected disease's table.
type panelData struct {
	ViewID string
	T      translations.Labels
	Theme  viewdata.Theme

	HasSelection bool
	Disease      string
	Heading      string

	Loading bool
	Failed  bool
	Error   string

	Columns []string
	Rows    []rowData

	EmailStatus string
	SMSStatus   string
}

type rowData struct {
	Serial string
	Region string
	Values []string
}

func statusLabel(t translations.Labels, on bool) string {
	if on {
		return t.Get("enabled")
	}
	return t.Get("disabled")
}

func buildSidebar(st State, t translations.Labels, csrfToken string) sidebarData {
	links := make([]diseaseLink, 0, len(models.Diseases))
	for _, d := range models.Diseases {
		links = append(links, diseaseLink{
			Key:      d.String(),
			Label:    t.Get(d.String()),
			Selected: d == st.Selected,
		})
	}
	return sidebarData{
		ViewID:          st.ViewID,
		T:               t,
		CSRFToken:       csrfToken,
		ReportsMenuOpen: st.ReportsMenuOpen,
		Diseases:        links,
	}
}

func buildPanel(st State, t translations.Labels) panelData {
	pd := panelData{
		ViewID:      st.ViewID,
		T:           t,
		Theme:       st.Theme,
		EmailStatus: statusLabel(t, st.Prefs.EmailNotifications),
		SMSStatus:   statusLabel(t, st.Prefs.SMSNotifications),
	}
	if st.Selected == models.DiseaseNone {
		return pd
	}

	pd.HasSelection = true
	pd.Disease = st.Selected.String()
	pd.Heading = st.Selected.Icon() + " " + t.Get(st.Selected.String()) + " " + t.Get("diseaseData")
	pd.Loading = st.Slot.State == SlotLoading
	pd.Failed = st.Slot.State == SlotFailed
	pd.Error = st.Slot.Err

	pd.Columns = make([]string, 0, 2+len(models.YearColumns))
	pd.Columns = append(pd.Columns, t.Get("colSerial"), t.Get("colRegion"))
	for _, col := range models.YearColumns {
		pd.Columns = append(pd.Columns, col.Label)
	}

	pd.Rows = make([]rowData, 0, len(st.Slot.Records))
	for _, rec := range st.Slot.Records {
		vals := make([]string, len(models.YearColumns))
		for i := range models.YearColumns {
			if i < len(rec.YearCounts) {
				vals[i] = rec.YearCounts[i].Value
			}
		}
		pd.Rows = append(pd.Rows, rowData{
			Serial: rec.SerialNo,
			Region: rec.RegionName,
			Values: vals,
		})
	}
	return pd
}

func buildPage(base viewdata.BaseVM, st State) pageData {
	return pageData{
		BaseVM:  base,
		ViewID:  st.ViewID,
		Sidebar: buildSidebar(st, base.T, base.CSRFToken),
		Panel:   buildPanel(st, base.T),
	}
}
