package extract

import (
	"context"
	"encoding/json"
	"net/url"

	"mygcc-backend/internal/failure"
)

type Address struct {
	Street  string `json:"street"`
	Street2 string `json:"street2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

type StudentContact struct {
	Address Address `json:"address"`
	Phone   struct {
		Home   string `json:"home"`
		Mobile string `json:"mobile"`
	} `json:"phone"`
	Email string `json:"email"`
}

type ParentContact struct {
	Name       string `json:"name"`
	Occupation string `json:"occupation"`
	Email      string `json:"email"`
	Phone      struct {
		Work   string `json:"work"`
		Mobile string `json:"mobile"`
	} `json:"phone"`
}

type SecondaryContact struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
	Phone   string  `json:"phone"`
}

type Contact struct {
	Student   StudentContact   `json:"student"`
	Father    ParentContact    `json:"father"`
	Mother    ParentContact    `json:"mother"`
	Secondary SecondaryContact `json:"secondary"`
}

// contactRecord is the portal's flat json representation.
type contactRecord struct {
	Address1 string
	Address2 string
	City     string
	State    string
	Zip      string
	Country  string
	Phone    string
	Mobile   string
	Email    string

	FatherName       string
	FatherOccupation string
	FatherEmail      string
	FatherWork       string
	FatherMobile     string

	MotherName       string
	MotherOccupation string
	MotherEmail      string
	MotherWork       string
	MotherMobile     string

	SeparatedParent   string
	SeparatedAddress1 string
	SeparatedAddress2 string
	SeparatedCity     string
	SeparatedState    string
	SeparatedZip      string
	SeparatedCountry  string
	SeparatedPhone    string
}

func parseContact(body []byte) (Contact, error) {
	var record contactRecord
	err := json.Unmarshal(body, &record)
	if err != nil {
		return Contact{}, failure.WithKind(failure.KindUnexpectedResponse, "decode contact", err)
	}

	var contact Contact
	contact.Student.Address = Address{
		Street:  record.Address1,
		Street2: record.Address2,
		City:    record.City,
		State:   record.State,
		Zipcode: record.Zip,
		Country: record.Country,
	}
	contact.Student.Phone.Home = record.Phone
	contact.Student.Phone.Mobile = record.Mobile
	contact.Student.Email = record.Email

	contact.Father.Name = record.FatherName
	contact.Father.Occupation = record.FatherOccupation
	contact.Father.Email = record.FatherEmail
	contact.Father.Phone.Work = record.FatherWork
	contact.Father.Phone.Mobile = record.FatherMobile

	contact.Mother.Name = record.MotherName
	contact.Mother.Occupation = record.MotherOccupation
	contact.Mother.Email = record.MotherEmail
	contact.Mother.Phone.Work = record.MotherWork
	contact.Mother.Phone.Mobile = record.MotherMobile

	contact.Secondary = SecondaryContact{
		Name: record.SeparatedParent,
		Address: Address{
			Street:  record.SeparatedAddress1,
			Street2: record.SeparatedAddress2,
			City:    record.SeparatedCity,
			State:   record.SeparatedState,
			Zipcode: record.SeparatedZip,
			Country: record.SeparatedCountry,
		},
		Phone: record.SeparatedPhone,
	}
	return contact, nil
}

// Contact returns the user's and their family's contact information.
func (e Extractor) Contact(ctx context.Context) (Contact, error) {
	path := contactEndpoint + url.QueryEscape(e.session.Credential().Username)
	body, err := e.session.FetchJSON(ctx, path)
	if err != nil {
		e.report(report_extract_contact, err)
		return Contact{}, err
	}
	contact, err := parseContact(body)
	if err != nil {
		e.report(report_extract_contact, err)
		return Contact{}, err
	}
	return contact, nil
}
