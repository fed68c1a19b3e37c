package actions

// Parameter is one named argument supplied by the agent runtime. Parameters
// are matched by name; order carries no meaning.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Invocation is the envelope for one conversational turn. SessionAttributes
// is the caller-held state bag; it is the only persistence of conversation
// progress.
type Invocation struct {
	ActionGroup       string            `json:"actionGroup"`
	Function          string            `json:"function"`
	MessageVersion    int               `json:"messageVersion"`
	Parameters        []Parameter       `json:"parameters"`
	SessionID         string            `json:"sessionId"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
	InputText         string            `json:"inputText"`
}

// Response is the well-formed envelope returned for every turn, including
// error turns.
type Response struct {
	Response          responseBody      `json:"response"`
	MessageVersion    int               `json:"messageVersion"`
	SessionAttributes map[string]string `json:"sessionAttributes,omitempty"`
}

type responseBody struct {
	ActionGroup      string           `json:"actionGroup"`
	Function         string           `json:"function"`
	FunctionResponse functionResponse `json:"functionResponse"`
}

type functionResponse struct {
	ResponseBody responseContent `json:"responseBody"`
}

type responseContent struct {
	Text textBody `json:"TEXT"`
}

type textBody struct {
	Body string `json:"body"`
}

// Body returns the rendered reply text, for callers and tests.
func (r Response) Body() string {
	return r.Response.FunctionResponse.ResponseBody.Text.Body
}

type doctorListing struct {
	DoctorID      string   `json:"doctor_id"`
	Name          string   `json:"name"`
	Specialty     string   `json:"specialty"`
	Location      string   `json:"location"`
	NextTimeslots []string `json:"next_available_timeslots"`
}

type timeslotListing struct {
	DoctorID      string   `json:"doctor_id"`
	DoctorName    string   `json:"doctor_name"`
	NextTimeslots []string `json:"next_available_timeslots"`
}
