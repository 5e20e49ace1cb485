package quests

import (
	"testing"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/catalog"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from   catalog.Status
		action Action
		want   bool
	}{
		{catalog.StatusWaitingForValidation, ActionValidate, true},
		{catalog.StatusValidated, ActionValidate, false},
		{catalog.StatusValidated, ActionInvalidate, true},
		{catalog.StatusWaitingForValidation, ActionInvalidate, false},
		{catalog.StatusWaitingForValidation, ActionRefuse, true},
		{catalog.StatusValidated, ActionRefuse, true},
		{catalog.StatusStarted, ActionRefuse, false},
		{catalog.StatusValidated, ActionStart, true},
		{catalog.StatusWaitingForValidation, ActionStart, false},
		{catalog.StatusStarted, ActionAbandon, true},
		{catalog.StatusStarted, ActionFinish, true},
		{catalog.StatusValidated, ActionFinish, false},
		{catalog.StatusWaitingForValidation, ActionUpdate, true},
		{catalog.StatusValidated, ActionUpdate, true},
		{catalog.StatusStarted, ActionUpdate, false},
		{catalog.StatusWaitingForValidation, ActionAssign, true},
		{catalog.StatusValidated, ActionAssign, true},
		{catalog.StatusStarted, ActionAssign, true},
		{catalog.StatusSucceeded, ActionAssign, false},
		{catalog.StatusRefused, ActionValidate, false},
		{catalog.StatusCancelled, ActionFinish, false},
		{catalog.StatusFailed, ActionUpdate, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.action); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.action, got, tt.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []catalog.Status{
		catalog.StatusRefused, catalog.StatusCancelled,
		catalog.StatusSucceeded, catalog.StatusFailed,
	}
	for _, st := range terminal {
		if !st.Terminal() {
			t.Errorf("%s should be terminal", st)
		}
		for _, a := range []Action{ActionUpdate, ActionValidate, ActionInvalidate, ActionRefuse, ActionStart, ActionAbandon, ActionFinish, ActionAssign} {
			if CanTransition(st, a) {
				t.Errorf("terminal status %s must not allow %s", st, a)
			}
		}
	}

	for _, st := range []catalog.Status{catalog.StatusWaitingForValidation, catalog.StatusValidated, catalog.StatusStarted} {
		if st.Terminal() {
			t.Errorf("%s should not be terminal", st)
		}
	}
}

func TestCheckRole(t *testing.T) {
	if err := CheckRole(ActionValidate, RoleGuildMaster); err != nil {
		t.Errorf("guild master must validate: %v", err)
	}
	if err := CheckRole(ActionValidate, RoleClient); err == nil {
		t.Error("client must not validate")
	}
	if err := CheckRole(ActionAbandon, RoleClient); err != nil {
		t.Errorf("client must abandon: %v", err)
	}
	if err := CheckRole(ActionAbandon, RoleGuildMaster); err == nil {
		t.Error("guild master must not abandon")
	}
	// Ungated actions accept anyone.
	if err := CheckRole(ActionStart, RoleAdventurer); err != nil {
		t.Errorf("start is not role gated: %v", err)
	}
	if err := CheckRole(ActionFinish, Role("")); err != nil {
		t.Errorf("finish is not role gated: %v", err)
	}
}
