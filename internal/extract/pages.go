package extract

// Every selector the extractors depend on lives here, so a change in the
// portal's markup is a change to this file only.

const notFoundSelector = ".notFound"

var schedulePage = struct {
	Url        string
	Rows       string
	Cells      string
	ListItems  string
	CodeCell   int
	TitleCell  int
	CreditCell int
	ProfCell   int
	TimeCell   int
	PlaceCell  int
	MinCells   int
}{
	Url:        "/ICS/Academics/Home.jnz?portlet=Student_Schedule",
	Rows:       ".gbody > tr:not(.subitem)",
	Cells:      "td",
	ListItems:  "ul > li",
	CodeCell:   1,
	TitleCell:  2,
	CreditCell: 3,
	ProfCell:   6,
	TimeCell:   7,
	PlaceCell:  9,
	MinCells:   10,
}

var homeworkPage = struct {
	Sections    string
	Assignments string
	Title       string
	Grade       string
	Due         string
	Description string
	OpenClass   string
}{
	Sections:    "#pg0_V__assignmentView__updatePanel > div.assignmentTitle",
	Assignments: ".assignmentDisplay",
	Title:       "div.assignmentText > a",
	Grade:       "div.assignmentText > span",
	Due:         "div.assignmentDue > strong",
	Description: "div.assignmentDescription",
	OpenClass:   "open",
}

var chapelPage = struct {
	Url        string
	Frame      string
	Rows       string
	TokenCount int
	// first of the five counters, in the order required, makeups,
	// attended, remaining, special
	FirstCounter int
}{
	Url:          "/ICS/Student/Default_Page.jnz?portlet=Chapel_Attendance",
	Frame:        "#pg0_V_iframe",
	Rows:         "#grd tbody tr",
	TokenCount:   13,
	FirstCounter: 8,
}

var crimsonCashPage = struct {
	Url     string
	Frame   string
	Box     string
	Balance string
}{
	Url:     "/ICS/Financial_Info/Default_Page.jnz?portlet=Universal_Portlet",
	Frame:   "#pg0_V_iframe",
	Box:     "#form1 > div",
	Balance: "span > b",
}

const (
	contactEndpoint   = "/html5/apps/stulife/models/JSON.ashx?entity=contact&qry=get&id_num="
	insuranceEndpoint = "/html5/apps/fin/models/JSON.ashx?entity=healthinsurance&qry=get&id_num="
)

var profilePage = struct {
	Url         string
	ContactUrl  string
	AcademicUrl string
	ContactTab  string
	AcademicTab string
	TabLinks    string

	Header       string
	HeaderPrefix string
	FirstName    string
	MiddleName   string
	LastName     string
	Birth        string
	Marital      string
	Gender       string
	Ethnicity    string
	EmailCells   string
	Degree       string
	Major        string
}{
	Url:         "/ICS/?tool=myProfileSettings",
	ContactUrl:  "/ICS/?tool=myProfileSettings&screen=ContactInformationView",
	AcademicUrl: "/ICS/?tool=myProfileSettings&screen=AcademicInformationView",
	ContactTab:  "Contact Information",
	AcademicTab: "Academic Information",
	TabLinks:    "a[href^='javascript:__doPostBack']",

	Header:       "#CP_V_ViewHeader_SiteManagerLabel",
	HeaderPrefix: "My profile and settings - ",
	FirstName:    "#CP_V_CampusName",
	MiddleName:   "#CP_V_MiddleName",
	LastName:     "#CP_V_LastName",
	Birth:        "#CP_V_DateOfBirth",
	Marital:      "#CP_V_MaritalStatus option",
	Gender:       "#CP_V_Gender option",
	Ethnicity:    "#CP_V_Ethnicity option",
	EmailCells:   "#emailTable tbody tr td",
	Degree:       "#CP_V_AcademicInformationCards_ctl00_AcademicInformationCard_InformationSetsRepeater_ctl00_InformationItemsRepeater_ctl00_Value",
	Major:        "#CP_V_AcademicInformationCards_ctl00_AcademicInformationCard_InformationSetsRepeater_ctl00_InformationItemsRepeater_ctl01_Value",
}

var filesPage = struct {
	Rows string
}{
	Rows: ".Handouts tbody.gbody tr",
}

var collaborationPage = struct {
	Cells   string
	Name    string
	Photo   string
	Role    string
	// Faculty holds lowercased, space-free role fragments.
	Faculty []string
}{
	Cells:   ".pContent tr td",
	Name:    ".accessibility",
	Photo:   ".gPhotoImage",
	Role:    ".HLRoleItem",
	Faculty: []string{"faculty"},
}
