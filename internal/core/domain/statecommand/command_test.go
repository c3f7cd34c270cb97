package statecommand_test

import (
	"strings"
	"testing"
	"time"

	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/domain/statecommand"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type role int

const (
	roleCreator role = iota
	roleAssignee
	roleStranger
)

func (r role) String() string {
	return [...]string{"creator", "assignee", "stranger"}[r]
}

type fixture struct {
	creator  *employee.Employee
	assignee *employee.Employee
	stranger *employee.Employee
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mk := func(userName string) *employee.Employee {
		e, err := employee.NewEmployee(kernel.NewUUID(), userName, userName, "Tester", "")
		require.NoError(t, err)
		return e
	}
	return fixture{creator: mk("creator"), assignee: mk("assignee"), stranger: mk("stranger")}
}

func (f fixture) actor(r role) *employee.Employee {
	switch r {
	case roleCreator:
		return f.creator
	case roleAssignee:
		return f.assignee
	default:
		return f.stranger
	}
}

func (f fixture) workOrderIn(t *testing.T, status workorder.Status) *workorder.WorkOrder {
	t.Helper()
	assigneeID := f.assignee.ID()
	wo, err := workorder.Restore(workorder.Snapshot{
		ID:          kernel.NewUUID(),
		Number:      "WO-1",
		Title:       "Fix lighting",
		Description: "Replace bulb",
		Status:      status,
		CreatorID:   f.creator.ID(),
		AssigneeID:  &assigneeID,
		Version:     1,
	})
	require.NoError(t, err)
	return wo
}

// expectedValid mirrors the transition table: which statuses each kind starts
// from and which roles may run it.
var expectedValid = map[statecommand.Kind]struct {
	begin []workorder.Status
	roles []role
}{
	statecommand.KindSave:              {[]workorder.Status{workorder.Draft}, []role{roleCreator}},
	statecommand.KindAssign:            {[]workorder.Status{workorder.Draft}, []role{roleCreator}},
	statecommand.KindBegin:             {[]workorder.Status{workorder.Assigned}, []role{roleAssignee}},
	statecommand.KindComplete:          {[]workorder.Status{workorder.InProgress}, []role{roleAssignee}},
	statecommand.KindShelve:            {[]workorder.Status{workorder.InProgress}, []role{roleAssignee}},
	statecommand.KindCancel:            {[]workorder.Status{workorder.Assigned, workorder.InProgress}, []role{roleCreator}},
	statecommand.KindReopen:            {[]workorder.Status{workorder.Complete}, []role{roleCreator, roleAssignee}},
	statecommand.KindArchive:           {[]workorder.Status{workorder.Complete}, []role{roleCreator, roleAssignee}},
	statecommand.KindDelete:            {[]workorder.Status{workorder.Draft}, []role{roleCreator}},
	statecommand.KindUpdateDescription: {workorder.All(), []role{roleCreator, roleAssignee}},
}

func TestCommand_IsValid_Table(t *testing.T) {
	f := newFixture(t)

	require.Len(t, expectedValid, len(statecommand.Kinds()))
	for _, kind := range statecommand.Kinds() {
		want := expectedValid[kind]
		for _, status := range workorder.All() {
			for _, r := range []role{roleCreator, roleAssignee, roleStranger} {
				name := kind.String() + "/" + status.Key() + "/" + r.String()
				t.Run(name, func(t *testing.T) {
					cmd, err := statecommand.New(kind, f.workOrderIn(t, status), f.actor(r))
					require.NoError(t, err)

					expected := containsStatus(want.begin, status) && containsRole(want.roles, r)
					assert.Equal(t, expected, cmd.IsValid())
				})
			}
		}
	}
}

func TestDefinition_Check_RejectionKinds(t *testing.T) {
	f := newFixture(t)

	t.Run("should report status mismatch before authorization", func(t *testing.T) {
		def, err := statecommand.Lookup(statecommand.KindBegin)
		require.NoError(t, err)

		rejection := def.Check(f.workOrderIn(t, workorder.Draft), f.stranger.ID())
		assert.Equal(t, statecommand.RejectionInvalidTransition, rejection)
	})

	t.Run("should report unauthorized when status matches", func(t *testing.T) {
		def, err := statecommand.Lookup(statecommand.KindCancel)
		require.NoError(t, err)

		rejection := def.Check(f.workOrderIn(t, workorder.Assigned), f.assignee.ID())
		assert.Equal(t, statecommand.RejectionUnauthorized, rejection)
	})

	t.Run("should accept valid command", func(t *testing.T) {
		def, err := statecommand.Lookup(statecommand.KindArchive)
		require.NoError(t, err)

		rejection := def.Check(f.workOrderIn(t, workorder.Complete), f.assignee.ID())
		assert.Equal(t, statecommand.RejectionNone, rejection)
	})

	t.Run("should round trip rejection names", func(t *testing.T) {
		for _, r := range []statecommand.Rejection{
			statecommand.RejectionNone,
			statecommand.RejectionInvalidTransition,
			statecommand.RejectionUnauthorized,
		} {
			assert.Equal(t, r, statecommand.ParseRejection(r.String()))
		}
	})
}

func TestCancel_ComputesBeginStatus(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		current  workorder.Status
		expected workorder.Status
	}{
		{workorder.Draft, workorder.None},
		{workorder.Assigned, workorder.Assigned},
		{workorder.InProgress, workorder.InProgress},
		{workorder.Complete, workorder.None},
		{workorder.Cancelled, workorder.None},
		{workorder.Archived, workorder.None},
	}

	for _, tc := range testCases {
		t.Run(tc.current.Name(), func(t *testing.T) {
			cmd, err := statecommand.New(statecommand.KindCancel, f.workOrderIn(t, tc.current), f.creator)
			require.NoError(t, err)

			assert.Equal(t, tc.expected, cmd.BeginStatus())
			assert.Equal(t, workorder.Cancelled, cmd.EndStatus())
		})
	}
}

func TestDefinition_EndStatus(t *testing.T) {
	expected := map[statecommand.Kind]workorder.Status{
		statecommand.KindSave:     workorder.Draft,
		statecommand.KindAssign:   workorder.Assigned,
		statecommand.KindBegin:    workorder.InProgress,
		statecommand.KindComplete: workorder.Complete,
		statecommand.KindShelve:   workorder.Assigned,
		statecommand.KindCancel:   workorder.Cancelled,
		statecommand.KindReopen:   workorder.InProgress,
		statecommand.KindArchive:  workorder.Archived,
		statecommand.KindDelete:   workorder.None,
	}
	for kind, end := range expected {
		def, err := statecommand.Lookup(kind)
		require.NoError(t, err)
		assert.Equal(t, end, def.EndStatus(workorder.Draft), kind.String())
	}

	t.Run("should preserve status for description updates", func(t *testing.T) {
		def, err := statecommand.Lookup(statecommand.KindUpdateDescription)
		require.NoError(t, err)
		for _, s := range workorder.All() {
			assert.Equal(t, s, def.EndStatus(s))
		}
	})

	t.Run("should change status for every non preserving transition", func(t *testing.T) {
		for kind, end := range expected {
			def, err := statecommand.Lookup(kind)
			require.NoError(t, err)
			for _, s := range workorder.All() {
				begin := def.BeginStatus(s)
				if begin.IsNone() || kind == statecommand.KindSave || kind == statecommand.KindDelete {
					continue
				}
				assert.NotEqual(t, begin, end, kind.String())
			}
		}
	})
}

func TestDefinition_Verbs(t *testing.T) {
	verbs := map[statecommand.Kind][2]string{
		statecommand.KindSave:              {"Save", "Saved"},
		statecommand.KindAssign:            {"Assign", "Assigned"},
		statecommand.KindBegin:             {"Begin", "Begun"},
		statecommand.KindComplete:          {"Complete", "Completed"},
		statecommand.KindShelve:            {"Shelve", "Shelved"},
		statecommand.KindCancel:            {"Cancel", "Cancelled"},
		statecommand.KindReopen:            {"Re-Open", "Re-Opened"},
		statecommand.KindArchive:           {"Archive", "Archived"},
		statecommand.KindDelete:            {"Delete", "Deleted"},
		statecommand.KindUpdateDescription: {"Save", "Saved"},
	}
	for kind, v := range verbs {
		def, err := statecommand.Lookup(kind)
		require.NoError(t, err)
		assert.Equal(t, v[0], def.PresentVerb(), kind.String())
		assert.Equal(t, v[1], def.PastVerb(), kind.String())
	}
}

func TestKindByName(t *testing.T) {
	testCases := map[string]statecommand.Kind{
		"Save":               statecommand.KindSave,
		"assign":             statecommand.KindAssign,
		"BEGIN":              statecommand.KindBegin,
		"Re-Open":            statecommand.KindReopen,
		"reopen":             statecommand.KindReopen,
		"UpdateDescription":  statecommand.KindUpdateDescription,
		"update_description": statecommand.KindUpdateDescription,
	}
	for name, expected := range testCases {
		kind, err := statecommand.KindByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, kind, name)
	}

	_, err := statecommand.KindByName("Approve")
	require.ErrorIs(t, err, statecommand.ErrUnknownCommand)

	_, err = statecommand.Lookup(statecommand.KindUnknown)
	require.ErrorIs(t, err, statecommand.ErrUnknownCommand)
}

func TestDefinition_FieldErrors(t *testing.T) {
	f := newFixture(t)

	t.Run("should collect every message in one pass", func(t *testing.T) {
		wo, err := workorder.NewDraft(f.creator.ID(), " ", "")
		require.NoError(t, err)
		def, err := statecommand.Lookup(statecommand.KindAssign)
		require.NoError(t, err)

		assert.Equal(t, []string{
			statecommand.MsgTitleRequired,
			statecommand.MsgDescriptionRequired,
			statecommand.MsgAssigneeRequired,
		}, def.FieldErrors(wo))
	})

	t.Run("should bound title length", func(t *testing.T) {
		wo, err := workorder.NewDraft(f.creator.ID(), strings.Repeat("t", workorder.MaxTitleLength+1), "d")
		require.NoError(t, err)
		def, err := statecommand.Lookup(statecommand.KindSave)
		require.NoError(t, err)

		assert.Equal(t, []string{statecommand.MsgTitleTooLong}, def.FieldErrors(wo))
	})

	t.Run("should not validate fields for pure transitions", func(t *testing.T) {
		wo, err := workorder.NewDraft(f.creator.ID(), "", "")
		require.NoError(t, err)
		def, err := statecommand.Lookup(statecommand.KindBegin)
		require.NoError(t, err)

		assert.Empty(t, def.FieldErrors(wo))
	})

	t.Run("should only require description for description updates", func(t *testing.T) {
		wo, err := workorder.NewDraft(f.creator.ID(), "", "")
		require.NoError(t, err)
		def, err := statecommand.Lookup(statecommand.KindUpdateDescription)
		require.NoError(t, err)

		assert.Equal(t, []string{statecommand.MsgDescriptionRequired}, def.FieldErrors(wo))
	})
}

func TestDefinition_ApplyEdits(t *testing.T) {
	f := newFixture(t)
	title := "New title"
	description := strings.Repeat("d", workorder.MaxTextLength+1)
	instructions := "Use the ladder"
	deadline := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	assigneeID := f.assignee.ID()
	edits := statecommand.Edits{
		Title:        &title,
		Description:  &description,
		Instructions: &instructions,
		Deadline:     &deadline,
		RoomTags:     []string{"101"},
		AssigneeID:   &assigneeID,
	}

	t.Run("should write every field for Save", func(t *testing.T) {
		wo, err := workorder.NewDraft(f.creator.ID(), "Old", "Old")
		require.NoError(t, err)
		def, err := statecommand.Lookup(statecommand.KindSave)
		require.NoError(t, err)

		require.NoError(t, def.ApplyEdits(wo, edits))
		assert.Equal(t, title, wo.Title())
		assert.Len(t, wo.Description(), workorder.MaxTextLength)
		assert.Equal(t, instructions, wo.Instructions())
		assert.Equal(t, deadline, *wo.Deadline())
		assert.Equal(t, []string{"101"}, wo.RoomTags())
		assert.True(t, wo.IsAssignee(assigneeID))
	})

	t.Run("should only write text for description updates", func(t *testing.T) {
		wo, err := workorder.NewDraft(f.creator.ID(), "Old", "Old")
		require.NoError(t, err)
		def, err := statecommand.Lookup(statecommand.KindUpdateDescription)
		require.NoError(t, err)

		require.NoError(t, def.ApplyEdits(wo, edits))
		assert.Equal(t, "Old", wo.Title())
		assert.Equal(t, instructions, wo.Instructions())
		assert.Nil(t, wo.Deadline())
		assert.Nil(t, wo.AssigneeID())
	})

	t.Run("should ignore edits on pure transitions", func(t *testing.T) {
		wo := f.workOrderIn(t, workorder.Assigned)
		def, err := statecommand.Lookup(statecommand.KindBegin)
		require.NoError(t, err)

		require.NoError(t, def.ApplyEdits(wo, edits))
		assert.Equal(t, "Fix lighting", wo.Title())
	})

	t.Run("should clear the deadline", func(t *testing.T) {
		wo, err := workorder.NewDraft(f.creator.ID(), "Old", "Old")
		require.NoError(t, err)
		wo.ChangeDeadline(&deadline)
		def, err := statecommand.Lookup(statecommand.KindSave)
		require.NoError(t, err)

		require.NoError(t, def.ApplyEdits(wo, statecommand.Edits{ClearDeadline: true}))
		assert.Nil(t, wo.Deadline())
	})
}

func TestDefinition_Execute(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("should stamp completion", func(t *testing.T) {
		wo := f.workOrderIn(t, workorder.InProgress)
		def, err := statecommand.Lookup(statecommand.KindComplete)
		require.NoError(t, err)

		require.NoError(t, def.Execute(wo, at))
		assert.Equal(t, workorder.Complete, wo.Status())
		assert.Equal(t, at, *wo.CompletedDate())
	})

	t.Run("should refuse to execute delete", func(t *testing.T) {
		wo := f.workOrderIn(t, workorder.Draft)
		def, err := statecommand.Lookup(statecommand.KindDelete)
		require.NoError(t, err)

		require.ErrorIs(t, def.Execute(wo, at), statecommand.ErrDeleteIsNotATransition)
	})
}

func TestNew(t *testing.T) {
	f := newFixture(t)

	t.Run("should copy the work order", func(t *testing.T) {
		wo := f.workOrderIn(t, workorder.Assigned)
		cmd, err := statecommand.New(statecommand.KindBegin, wo, f.assignee, statecommand.WithCorrelationID("abc"))
		require.NoError(t, err)

		wo.ChangeTitle("changed after construction")
		assert.Equal(t, "Fix lighting", cmd.WorkOrder().Title())
		assert.Equal(t, "abc", cmd.CorrelationID())
		assert.Equal(t, wo.ID(), cmd.WorkOrderID())
		assert.Equal(t, f.assignee.ID(), cmd.ActorID())
	})

	t.Run("should reject zero values", func(t *testing.T) {
		_, err := statecommand.New(statecommand.KindBegin, nil, f.assignee)
		require.ErrorIs(t, err, workorder.ErrWorkOrderIsNotConstructed)

		_, err = statecommand.New(statecommand.KindBegin, f.workOrderIn(t, workorder.Assigned), nil)
		require.ErrorIs(t, err, employee.ErrEmployeeIsNotConstructed)

		var zero statecommand.Command
		require.ErrorIs(t, zero.Validate(), statecommand.ErrCommandIsNotConstructed)
		assert.False(t, zero.IsValid())
	})

	t.Run("should capture edits from a changed copy", func(t *testing.T) {
		wo, err := workorder.NewDraft(f.creator.ID(), "Fix lighting", "Replace bulb")
		require.NoError(t, err)
		require.NoError(t, wo.AssignTo(f.assignee.ID()))

		cmd, err := statecommand.New(statecommand.KindAssign, wo, f.creator,
			statecommand.WithEdits(statecommand.EditsFrom(wo)))
		require.NoError(t, err)

		edits := cmd.Edits()
		require.NotNil(t, edits.Title)
		assert.Equal(t, "Fix lighting", *edits.Title)
		assert.True(t, edits.ClearDeadline)
		require.NotNil(t, edits.AssigneeID)
		assert.Equal(t, f.assignee.ID(), *edits.AssigneeID)
	})

	t.Run("should resolve kinds by name", func(t *testing.T) {
		cmd, err := statecommand.NewByName("re-open", f.workOrderIn(t, workorder.Complete), f.creator)
		require.NoError(t, err)
		assert.Equal(t, statecommand.KindReopen, cmd.Kind())
		assert.True(t, cmd.IsValid())
	})
}

func containsStatus(list []workorder.Status, s workorder.Status) bool {
	for _, item := range list {
		if item.Equal(s) {
			return true
		}
	}
	return false
}

func containsRole(list []role, r role) bool {
	for _, item := range list {
		if item == r {
			return true
		}
	}
	return false
}

func TestPerKindConstructors(t *testing.T) {
	f := newFixture(t)

	t.Run("should attach the assignee to Assign", func(t *testing.T) {
		wo, err := workorder.NewDraft(f.creator.ID(), "Fix lighting", "Replace bulb")
		require.NoError(t, err)

		cmd, err := statecommand.NewAssign(wo, f.creator, f.assignee.ID())
		require.NoError(t, err)

		assert.Equal(t, statecommand.KindAssign, cmd.Kind())
		require.NotNil(t, cmd.Edits().AssigneeID)
		assert.Equal(t, f.assignee.ID(), *cmd.Edits().AssigneeID)
	})

	t.Run("should carry description edits", func(t *testing.T) {
		cmd, err := statecommand.NewUpdateDescription(f.workOrderIn(t, workorder.InProgress), f.assignee, "New", "Steps")
		require.NoError(t, err)

		edits := cmd.Edits()
		assert.Equal(t, "New", *edits.Description)
		assert.Equal(t, "Steps", *edits.Instructions)
		assert.Nil(t, edits.Title)
		assert.True(t, cmd.IsValid())
	})

	t.Run("should build every kind", func(t *testing.T) {
		wo := f.workOrderIn(t, workorder.Complete)
		builders := map[statecommand.Kind]func() (statecommand.Command, error){
			statecommand.KindSave:     func() (statecommand.Command, error) { return statecommand.NewSave(wo, f.creator) },
			statecommand.KindBegin:    func() (statecommand.Command, error) { return statecommand.NewBegin(wo, f.creator) },
			statecommand.KindComplete: func() (statecommand.Command, error) { return statecommand.NewComplete(wo, f.creator) },
			statecommand.KindShelve:   func() (statecommand.Command, error) { return statecommand.NewShelve(wo, f.creator) },
			statecommand.KindCancel:   func() (statecommand.Command, error) { return statecommand.NewCancel(wo, f.creator) },
			statecommand.KindReopen:   func() (statecommand.Command, error) { return statecommand.NewReopen(wo, f.creator) },
			statecommand.KindArchive:  func() (statecommand.Command, error) { return statecommand.NewArchive(wo, f.creator) },
			statecommand.KindDelete:   func() (statecommand.Command, error) { return statecommand.NewDelete(wo, f.creator) },
		}
		for kind, build := range builders {
			cmd, err := build()
			require.NoError(t, err)
			assert.Equal(t, kind, cmd.Kind())
		}
	})
}
