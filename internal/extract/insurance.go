package extract

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"mygcc-backend/internal/failure"
)

type Employer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Subscriber struct {
	Name         string   `json:"name"`
	Employer     Employer `json:"employer"`
	Relationship string   `json:"relationship"`
}

type Policy struct {
	CompanyName string     `json:"companyName"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	Policy      string     `json:"policy"`
	Group       string     `json:"group"`
	Subscriber  Subscriber `json:"subscriber"`
}

type Physician struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Insurance only carries policies when the student uses their own insurance
// instead of the college's.
type Insurance struct {
	UsesCollegeInsurance bool       `json:"usesCollegeInsurance"`
	Primary              *Policy    `json:"primary,omitempty"`
	Secondary            *Policy    `json:"secondary,omitempty"`
	Physician            *Physician `json:"physician,omitempty"`
}

type insuranceRecord struct {
	HasInsurance bool

	InsCompany      string
	InsPhone        string
	Address         string
	PolicyNum       string
	GroupNum        string
	Subscriber      string
	Employer        string
	EmployerAddress string
	Relationship    string

	InsCompany2      string
	InsPhone2        string
	Address2         string
	PolicyNum2       string
	GroupNum2        string
	Subscriber2      string
	Employer2        string
	EmployerAddress2 string
	Relationship2    string

	Physician string
	PhysPhone string
}

func stripDashes(phone string) string {
	return strings.ReplaceAll(phone, "-", "")
}

func parseInsurance(body []byte) (Insurance, error) {
	var record insuranceRecord
	err := json.Unmarshal(body, &record)
	if err != nil {
		return Insurance{}, failure.WithKind(failure.KindUnexpectedResponse, "decode insurance", err)
	}
	if !record.HasInsurance {
		return Insurance{UsesCollegeInsurance: true}, nil
	}

	return Insurance{
		Primary: &Policy{
			CompanyName: record.InsCompany,
			Phone:       stripDashes(record.InsPhone),
			Address:     record.Address,
			Policy:      record.PolicyNum,
			Group:       record.GroupNum,
			Subscriber: Subscriber{
				Name:         record.Subscriber,
				Employer:     Employer{Name: record.Employer, Address: record.EmployerAddress},
				Relationship: record.Relationship,
			},
		},
		Secondary: &Policy{
			CompanyName: record.InsCompany2,
			Phone:       stripDashes(record.InsPhone2),
			Address:     record.Address2,
			Policy:      record.PolicyNum2,
			Group:       record.GroupNum2,
			Subscriber: Subscriber{
				Name:         record.Subscriber2,
				Employer:     Employer{Name: record.Employer2, Address: record.EmployerAddress2},
				Relationship: record.Relationship2,
			},
		},
		Physician: &Physician{
			Name:  record.Physician,
			Phone: stripDashes(record.PhysPhone),
		},
	}, nil
}

// Insurance returns the health insurance the user has on file.
func (e Extractor) Insurance(ctx context.Context) (Insurance, error) {
	path := insuranceEndpoint + url.QueryEscape(e.session.Credential().Username)
	body, err := e.session.FetchJSON(ctx, path)
	if err != nil {
		e.report(report_extract_insurance, err)
		return Insurance{}, err
	}
	insurance, err := parseInsurance(body)
	if err != nil {
		e.report(report_extract_insurance, err)
		return Insurance{}, err
	}
	return insurance, nil
}
