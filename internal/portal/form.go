package portal

import (
	"bytes"
	"fmt"
	"math/rand/v2"

	"github.com/mazen160/go-random"
)

const (
	boundaryPrefix = "---------------------------"
	boundaryDigits = 25
)

const (
	fieldScriptManager    = "_scriptManager_HiddenField"
	fieldEventTarget      = "__EVENTTARGET"
	fieldEventArgument    = "__EVENTARGUMENT"
	fieldViewState        = "__VIEWSTATE"
	fieldViewStateGen     = "__VIEWSTATEGENERATOR"
	fieldBrowserRefresh   = "___BrowserRefresh"
	fieldUserName         = "userName"
	fieldPassword         = "password"
	fieldLoginButton      = "btnLogin"
	fieldSearchBox        = "ctl04$tbSearch"
	loginButtonValue      = "Login"
	searchBoxPlaceholder  = "Search..."
	multipartContentType  = "multipart/form-data; boundary="
	formDispositionHeader = "Content-Disposition: form-data; name=\"%s\"\r\n\r\n"
)

// Field is a single multipart form field, order matters to the portal.
type Field struct {
	Name  string
	Value string
}

// newBoundary returns the browser style boundary the portal's login form
// expects: a run of dashes followed by 25 random digits.
func newBoundary() string {
	out := make([]byte, boundaryDigits)

	chars, err := random.String(boundaryDigits)
	if err != nil || len(chars) < boundaryDigits {
		for i := range out {
			out[i] = byte('0' + rand.IntN(10))
		}
		return boundaryPrefix + string(out)
	}

	for i := range out {
		out[i] = '0' + chars[i]%10
	}
	return boundaryPrefix + string(out)
}

func encodeForm(boundary string, fields []Field) []byte {
	var body bytes.Buffer
	for _, f := range fields {
		body.WriteString("--")
		body.WriteString(boundary)
		body.WriteString("\r\n")
		fmt.Fprintf(&body, formDispositionHeader, f.Name)
		body.WriteString(f.Value)
		body.WriteString("\r\n")
	}
	body.WriteString("--")
	body.WriteString(boundary)
	body.WriteString("--\r\n")
	return body.Bytes()
}

func loginFields(username, password string) []Field {
	return []Field{
		{Name: fieldScriptManager},
		{Name: fieldEventTarget},
		{Name: fieldEventArgument},
		{Name: fieldViewState},
		{Name: fieldViewStateGen},
		{Name: fieldBrowserRefresh},
		{Name: fieldUserName, Value: username},
		{Name: fieldPassword, Value: password},
		{Name: fieldLoginButton, Value: loginButtonValue},
		{Name: fieldSearchBox, Value: searchBoxPlaceholder},
	}
}

func postbackFields(eventTarget, eventArgument, viewState, browserRefresh string, extra []Field) []Field {
	fields := []Field{
		{Name: fieldScriptManager},
		{Name: fieldEventTarget, Value: eventTarget},
		{Name: fieldEventArgument, Value: eventArgument},
		{Name: fieldViewState, Value: viewState},
		{Name: fieldViewStateGen},
		{Name: fieldBrowserRefresh, Value: browserRefresh},
	}
	fields = append(fields, extra...)
	return append(fields, Field{Name: fieldSearchBox, Value: searchBoxPlaceholder})
}
