package models

// SystemdServiceStatus reports the segpanel unit.
type SystemdServiceStatus struct {
	Service     string `json:"service" example:"segpanel.service" doc:"Unit name"`
	ActiveState string `json:"active_state" example:"active" doc:"Unit active state"`
	SubState    string `json:"sub_state" example:"running" doc:"Unit sub state"`
}

type SystemdServiceStatusResponse struct {
	Body SystemdServiceStatus
}

// SystemdServiceAction is the result of a unit action.
type SystemdServiceAction struct {
	Service string `json:"service" example:"segpanel.service" doc:"Unit name"`
	Action  string `json:"action" example:"restart" doc:"Action performed"`
	Success bool   `json:"success" example:"true" doc:"Whether the action was queued"`
}

type SystemdServiceActionResponse struct {
	Body SystemdServiceAction
}
