package kasa

// Wire types for the Kasa JSON protocol. Field names are defined by the
// device firmware.

type response struct {
	System   *systemResponse   `json:"system,omitempty"`
	Schedule *scheduleResponse `json:"schedule,omitempty"`
}

type systemResponse struct {
	Sysinfo       *sysinfo   `json:"get_sysinfo,omitempty"`
	SetRelayState *cmdResult `json:"set_relay_state,omitempty"`
}

type sysinfo struct {
	SWVersion  string `json:"sw_ver"`
	HWVersion  string `json:"hw_ver"`
	Model      string `json:"model"`
	DeviceID   string `json:"deviceId"`
	Alias      string `json:"alias"`
	Feature    string `json:"feature"`
	MAC        string `json:"mac"`
	RelayState int    `json:"relay_state"`
	OnTime     int    `json:"on_time"`
	ActiveMode string `json:"active_mode"`
	DevName    string `json:"dev_name"`
	ErrCode    int    `json:"err_code"`
	ErrMsg     string `json:"err_msg"`
}

type cmdResult struct {
	ErrCode int    `json:"err_code"`
	ErrMsg  string `json:"err_msg"`
}

type scheduleResponse struct {
	GetRules         *ruleList  `json:"get_rules,omitempty"`
	AddRule          *addResult `json:"add_rule,omitempty"`
	DeleteRule       *cmdResult `json:"delete_rule,omitempty"`
	SetOverallEnable *cmdResult `json:"set_overall_enable,omitempty"`
}

type ruleList struct {
	RuleList []Rule `json:"rule_list"`
	Enable   int    `json:"enable"`
	ErrCode  int    `json:"err_code"`
	ErrMsg   string `json:"err_msg"`
}

type addResult struct {
	ID      string `json:"id"`
	ErrCode int    `json:"err_code"`
	ErrMsg  string `json:"err_msg"`
}

// Rule is one entry in the plug's native schedule: fire at a minute offset
// from midnight (or relative to sun events) and switch the relay.
type Rule struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	// Enable is 1 when the rule is active.
	Enable int `json:"enable"`
	// WeekDays selects the days the rule fires, Sunday first.
	WeekDays [7]int `json:"wday"`
	// StartTimeOption is 0 for a clock time, 1 for sunrise, 2 for sunset.
	StartTimeOption int `json:"stime_opt"`
	// StartMinutes is minutes after midnight when StartTimeOption is 0.
	StartMinutes int `json:"smin"`
	// Action is the relay state to set: 0 off, 1 on.
	Action int `json:"sact"`
	// Repeat is 1 for recurring rules.
	Repeat int `json:"repeat"`
}

// ScheduleState is the plug's schedule sub-resource: the stored rules plus
// the device-global enable flag.
type ScheduleState struct {
	Rules   []Rule `json:"rules"`
	Enabled bool   `json:"enabled"`
}
