package kasa

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/hearth/internal/device"
)

// Native schedule pass-through. The rules live on the plug itself; Hearth
// only relays them, it does not interpret or trigger them.

// scheduleResult extracts the schedule branch of a reply and checks the
// firmware error code of one sub-command.
func (p *Plug) scheduleResult(resp *response, action string) (*scheduleResponse, error) {
	if resp.Schedule == nil {
		return nil, fmt.Errorf("%w: %s: no schedule result in reply from %s", device.ErrOperation, action, p.addr)
	}
	return resp.Schedule, nil
}

// Schedule fetches the plug's stored schedule rules and the global enable
// flag.
func (p *Plug) Schedule(ctx context.Context) (*ScheduleState, error) {
	resp, err := p.command(ctx, "list schedule", cmdScheduleRules)
	if err != nil {
		return nil, err
	}

	sched, err := p.scheduleResult(resp, "list schedule")
	if err != nil {
		return nil, err
	}
	if sched.GetRules == nil {
		return nil, fmt.Errorf("%w: list schedule: no rule list in reply from %s", device.ErrOperation, p.addr)
	}
	if sched.GetRules.ErrCode != 0 {
		return nil, fmt.Errorf("%w: list schedule: device error %d %s",
			device.ErrOperation, sched.GetRules.ErrCode, sched.GetRules.ErrMsg)
	}

	return &ScheduleState{
		Rules:   sched.GetRules.RuleList,
		Enabled: sched.GetRules.Enable > 0,
	}, nil
}

// AddScheduleRule stores a new rule on the plug and returns its device-assigned
// id. The rule's own ID field is ignored.
func (p *Plug) AddScheduleRule(ctx context.Context, rule Rule) (string, error) {
	rule.ID = ""
	body, err := json.Marshal(rule)
	if err != nil {
		return "", fmt.Errorf("%w: add schedule rule: %v", device.ErrValidation, err)
	}

	resp, err := p.command(ctx, "add schedule rule", fmt.Sprintf(`{"schedule":{"add_rule":%s}}`, body))
	if err != nil {
		return "", err
	}

	sched, err := p.scheduleResult(resp, "add schedule rule")
	if err != nil {
		return "", err
	}
	if sched.AddRule == nil {
		return "", fmt.Errorf("%w: add schedule rule: no result in reply from %s", device.ErrOperation, p.addr)
	}
	if sched.AddRule.ErrCode != 0 {
		return "", fmt.Errorf("%w: add schedule rule: device error %d %s",
			device.ErrOperation, sched.AddRule.ErrCode, sched.AddRule.ErrMsg)
	}

	p.logger.Info("schedule rule added", "address", p.addr, "rule_id", sched.AddRule.ID)
	return sched.AddRule.ID, nil
}

// DeleteScheduleRule removes one rule by its device-assigned id.
func (p *Plug) DeleteScheduleRule(ctx context.Context, id string) error {
	trimmed, err := device.RequireParam("rule id", id)
	if err != nil {
		return err
	}

	cmd := fmt.Sprintf(`{"schedule":{"delete_rule":{"id":%q}}}`, trimmed)
	resp, err := p.command(ctx, "delete schedule rule", cmd)
	if err != nil {
		return err
	}

	sched, err := p.scheduleResult(resp, "delete schedule rule")
	if err != nil {
		return err
	}
	if sched.DeleteRule == nil {
		return fmt.Errorf("%w: delete schedule rule: no result in reply from %s", device.ErrOperation, p.addr)
	}
	if sched.DeleteRule.ErrCode != 0 {
		return fmt.Errorf("%w: delete schedule rule: device error %d %s",
			device.ErrOperation, sched.DeleteRule.ErrCode, sched.DeleteRule.ErrMsg)
	}

	p.logger.Info("schedule rule deleted", "address", p.addr, "rule_id", trimmed)
	return nil
}

// SetScheduleEnabled flips the device-global schedule enable flag without
// touching the stored rules.
func (p *Plug) SetScheduleEnabled(ctx context.Context, enabled bool) error {
	enable := 0
	if enabled {
		enable = 1
	}

	cmd := fmt.Sprintf(`{"schedule":{"set_overall_enable":{"enable":%d}}}`, enable)
	resp, err := p.command(ctx, "enable schedule", cmd)
	if err != nil {
		return err
	}

	sched, err := p.scheduleResult(resp, "enable schedule")
	if err != nil {
		return err
	}
	if sched.SetOverallEnable == nil {
		return fmt.Errorf("%w: enable schedule: no result in reply from %s", device.ErrOperation, p.addr)
	}
	if sched.SetOverallEnable.ErrCode != 0 {
		return fmt.Errorf("%w: enable schedule: device error %d %s",
			device.ErrOperation, sched.SetOverallEnable.ErrCode, sched.SetOverallEnable.ErrMsg)
	}

	p.logger.Info("schedule enable flag set", "address", p.addr, "enabled", enabled)
	return nil
}
