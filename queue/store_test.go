package queue

import (
	"testing"

	"coldreach/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProspects() []models.Prospect {
	return []models.Prospect{
		{ID: 1, CompanyName: "Alpha", ContactName: "Ana", ContactEmail: "ana@alpha.test"},
		{ID: 2, CompanyName: "Beta", ContactName: "Ben", ContactEmail: "ben@beta.test"},
		{ID: 3, CompanyName: "Gamma", ContactName: "Gia", ContactEmail: "gia@gamma.test"},
	}
}

func testSender() models.SenderInfo {
	return models.SenderInfo{Name: "Sam", Company: "ColdReach", Phone: "555-0100", Email: "sam@example.com"}
}

func newTestStore() *Store {
	return NewStore(testProspects(), testSender(), "Quick question")
}

func TestDefaultDraftUsesBlankTemplate(t *testing.T) {
	s := newTestStore()

	draft, ok := s.DefaultDraft(1)
	require.True(t, ok)
	assert.Equal(t, "ana@alpha.test", draft.To)
	assert.Equal(t, "Quick question", draft.Subject)
	assert.Contains(t, draft.Body, "<p>Hi Ana,</p>")
	assert.Contains(t, draft.Body, "<p>Sam</p>")
}

func TestDefaultDraftFollowsTemplateChanges(t *testing.T) {
	s := newTestStore()

	s.SetTemplate("<p>Hi [Contact Name] at [COMPANY]</p>")
	draft, ok := s.DefaultDraft(2)
	require.True(t, ok)
	assert.Equal(t, "<p>Hi Ben at Beta</p>", draft.Body)

	s.ClearTemplate()
	draft, _ = s.DefaultDraft(2)
	assert.Contains(t, draft.Body, "<p>Hi Ben,</p>")
}

func TestSaveKeepsOnlyRealEdits(t *testing.T) {
	s := newTestStore()

	def, _ := s.DefaultDraft(1)

	// Saving the unmodified default stores nothing.
	s.Save(1, def)
	assert.False(t, s.IsCustomized(1))

	// A real edit sticks.
	edited := def
	edited.Body = "<p>Hand-written note</p>"
	s.Save(1, edited)
	assert.True(t, s.IsCustomized(1))

	displayed, _ := s.GetDisplayed(1)
	assert.Equal(t, "<p>Hand-written note</p>", displayed.Body)

	// Reverting the edit back to the default clears the saved draft.
	s.Save(1, def)
	assert.False(t, s.IsCustomized(1))
}

func TestSavedDraftPinnedAcrossTemplateChange(t *testing.T) {
	s := newTestStore()

	def, _ := s.DefaultDraft(1)
	edited := def
	edited.Body = "<p>Custom for Ana</p>"
	s.Save(1, edited)

	s.SetTemplate("<p>New template for [Contact Name]</p>")

	// The edited prospect keeps its pinned draft.
	got, _ := s.GetDisplayed(1)
	assert.Equal(t, "<p>Custom for Ana</p>", got.Body)

	// Everyone else follows the new template.
	got, _ = s.GetDisplayed(2)
	assert.Equal(t, "<p>New template for Ben</p>", got.Body)
}

func TestSaveIgnoredForUnavailableProspect(t *testing.T) {
	s := newTestStore()
	require.True(t, s.MarkSent(1))

	s.Save(1, models.Draft{To: "x@y.test", Subject: "s", Body: "b"})
	assert.False(t, s.IsCustomized(1))
}

func TestMarkSentAndRemoveAreDisjoint(t *testing.T) {
	s := newTestStore()

	assert.True(t, s.MarkSent(2))
	assert.False(t, s.MarkSent(2), "already sent")
	assert.False(t, s.Remove(2), "sent prospects cannot also be removed")

	assert.True(t, s.Remove(3))
	assert.False(t, s.Remove(3))

	assert.Equal(t, 1, s.SentCount())
	assert.Equal(t, []int{1}, s.Available())
	assert.False(t, s.Exhausted())

	assert.True(t, s.MarkSent(1))
	assert.True(t, s.Exhausted())
}

func TestMarkSentDiscardsSavedDraft(t *testing.T) {
	s := newTestStore()

	def, _ := s.DefaultDraft(1)
	def.Body = "<p>edited</p>"
	s.Save(1, def)
	require.True(t, s.IsCustomized(1))

	s.MarkSent(1)
	assert.False(t, s.IsCustomized(1))
}

func TestResetRestoresQueueButKeepsTemplate(t *testing.T) {
	s := newTestStore()

	s.SetTemplate("<p>T</p>")
	s.SetSubject("New subject")
	s.AddGlobalAttachment(models.Attachment{Filename: "deck.pdf", ContentType: "application/pdf"})
	s.MarkSent(1)
	s.Remove(2)

	s.Reset()

	assert.Equal(t, []int{1, 2, 3}, s.Available())
	assert.Equal(t, 0, s.SentCount())
	assert.Equal(t, "<p>T</p>", s.Template())
	assert.Equal(t, "New subject", s.Subject())
	assert.Len(t, s.GlobalAttachments(), 1)
}

func TestImportReplacesEverything(t *testing.T) {
	s := newTestStore()
	s.MarkSent(1)

	s.Import([]models.Prospect{
		{ID: 10, CompanyName: "Delta", ContactEmail: "d@delta.test"},
	})

	assert.Equal(t, []int{10}, s.Available())
	assert.Equal(t, 0, s.SentCount())
	_, ok := s.Prospect(1)
	assert.False(t, ok)
}

func TestImportDropsDuplicateIDs(t *testing.T) {
	s := NewStore([]models.Prospect{
		{ID: 1, CompanyName: "First"},
		{ID: 1, CompanyName: "Second"},
	}, testSender(), "")

	p, ok := s.Prospect(1)
	require.True(t, ok)
	assert.Equal(t, "First", p.CompanyName)
	assert.Equal(t, []int{1}, s.Available())
}

func TestGlobalAttachments(t *testing.T) {
	s := newTestStore()

	s.AddGlobalAttachment(models.Attachment{Filename: "a.pdf"})
	s.AddGlobalAttachment(models.Attachment{Filename: "b.pdf"})

	assert.False(t, s.RemoveGlobalAttachment(5))
	assert.True(t, s.RemoveGlobalAttachment(0))

	got := s.GlobalAttachments()
	require.Len(t, got, 1)
	assert.Equal(t, "b.pdf", got[0].Filename)
}

func TestMissingEmailCompanies(t *testing.T) {
	s := NewStore([]models.Prospect{
		{ID: 1, CompanyName: "Alpha", ContactEmail: "a@alpha.test"},
		{ID: 2, CompanyName: "Beta"},
		{ID: 3, CompanyName: "Gamma"},
	}, testSender(), "")

	assert.Equal(t, []string{"Beta", "Gamma"}, s.MissingEmailCompanies())
}
