package page_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/Kyz7/hub/internal/apperror"
	"github.com/Kyz7/hub/internal/middleware"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/page"
	"github.com/Kyz7/hub/internal/testutils"
	"github.com/Kyz7/hub/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func ptr(s string) *string { return &s }

func newService(t *testing.T) (*page.Service, *workflow.Service, *gorm.DB) {
	db := testutils.TestDB(t)
	testutils.CreateTestRoles(t, db)
	gate := middleware.RoleGate{}
	wf := workflow.NewService(db, testutils.TestStorage(t), gate)
	return page.NewService(db, gate, wf), wf, db
}

func TestCreatePageSlug(t *testing.T) {
	service, _, db := newService(t)
	editor := testutils.CreateTestUser(t, db, "editor@test.com", "password", "editor")
	ctx := context.Background()

	first, err := service.Create(ctx, editor, page.Input{
		TitleEN: ptr("New Page (EN)"),
		TitleUK: ptr("Нова Сторінка (UA)"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new-page-en", first.Slug)

	second, err := service.Create(ctx, editor, page.Input{TitleEN: ptr("New page EN")})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^new-page-en-[a-z0-9]{4}$`), second.Slug)

	ukOnly, err := service.Create(ctx, editor, page.Input{TitleUK: ptr("Контакти")})
	require.NoError(t, err)
	assert.Equal(t, "kontakti", ukOnly.Slug)

	symbols, err := service.Create(ctx, editor, page.Input{TitleEN: ptr("!!!")})
	require.NoError(t, err)
	assert.Equal(t, "page", symbols.Slug)
}

func TestCreatePageValidation(t *testing.T) {
	service, _, db := newService(t)
	editor := testutils.CreateTestUser(t, db, "editor@test.com", "password", "editor")
	viewer := testutils.CreateTestUser(t, db, "viewer@test.com", "password", "viewer")
	ctx := context.Background()

	_, err := service.Create(ctx, viewer, page.Input{TitleEN: ptr("About")})
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	_, err = service.Create(ctx, editor, page.Input{TitleEN: ptr("   "), TitleUK: nil})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err), "both titles blank")

	_, err = service.Create(ctx, editor, page.Input{TitleEN: ptr("About"), TitleUK: ptr("Про нас")})
	require.NoError(t, err)

	_, err = service.Create(ctx, editor, page.Input{TitleUK: ptr("Про нас")})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err), "uk title already taken")
}

func TestUpdatePageRegeneratesSlug(t *testing.T) {
	service, _, db := newService(t)
	editor := testutils.CreateTestUser(t, db, "editor@test.com", "password", "editor")
	ctx := context.Background()

	p, err := service.Create(ctx, editor, page.Input{TitleEN: ptr("Services")})
	require.NoError(t, err)

	same, err := service.Update(ctx, editor, p.ID, page.Input{TitleEN: ptr("Services")})
	require.NoError(t, err)
	assert.Equal(t, "services", same.Slug, "unchanged title keeps its own slug")

	renamed, err := service.Update(ctx, editor, p.ID, page.Input{TitleEN: ptr("Our Services")})
	require.NoError(t, err)
	assert.Equal(t, "our-services", renamed.Slug)

	db.Model(&models.Page{}).Where("id = ?", p.ID).Update("slug", "")
	restored, err := service.Update(ctx, editor, p.ID, page.Input{TitleEN: ptr("Our Services")})
	require.NoError(t, err)
	assert.Equal(t, "our-services", restored.Slug, "missing slug is derived again")

	_, err = service.Update(ctx, editor, 9999, page.Input{TitleEN: ptr("x")})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetBySlugOrdersSectionsAndContents(t *testing.T) {
	service, wf, db := newService(t)
	editor := testutils.CreateTestUser(t, db, "editor@test.com", "password", "editor")
	ctx := context.Background()

	p, err := service.Create(ctx, editor, page.Input{TitleEN: ptr("Home")})
	require.NoError(t, err)

	first, err := service.CreateSection(ctx, editor, p.ID, page.Input{TitleEN: ptr("First")})
	require.NoError(t, err)
	second, err := service.CreateSection(ctx, editor, p.ID, page.Input{TitleEN: ptr("Second")})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)
	assert.Equal(t, models.SectionDraft, second.Status)
	assert.Equal(t, "Second", *second.TitleDraftEN)
	assert.Nil(t, second.TitleEN)

	_, _, err = wf.AddContent(ctx, editor, second.ID, models.KindURL, workflow.Submission{
		Values:      map[models.Locale]*string{models.LocaleNone: ptr("https://example.com")},
		Transitions: []workflow.Transition{{Action: workflow.ActionRequestUpdate}},
	})
	require.NoError(t, err)

	_, err = wf.ReorderSections(ctx, editor, map[string]int{
		itoa(first.ID):  2,
		itoa(second.ID): 1,
	})
	require.NoError(t, err)

	got, err := service.GetBySlug(ctx, "home")
	require.NoError(t, err)
	require.Len(t, got.Sections, 2)
	assert.Equal(t, second.ID, got.Sections[0].ID)
	require.Len(t, got.Sections[0].Contents, 1)

	item, ok := got.Sections[0].Contents[0].Item.(*models.URLItem)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", *item.ContentDraft)

	_, err = service.GetBySlug(ctx, "missing")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = service.CreateSection(ctx, editor, 9999, page.Input{})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestListPagesByLocale(t *testing.T) {
	service, _, db := newService(t)
	editor := testutils.CreateTestUser(t, db, "editor@test.com", "password", "editor")
	ctx := context.Background()

	_, err := service.Create(ctx, editor, page.Input{TitleEN: ptr("Bravo"), TitleUK: ptr("Альфа")})
	require.NoError(t, err)
	_, err = service.Create(ctx, editor, page.Input{TitleEN: ptr("Alpha"), TitleUK: ptr("Браво")})
	require.NoError(t, err)

	en, err := service.List(ctx, models.LocaleEN)
	require.NoError(t, err)
	require.Len(t, en, 2)
	assert.Equal(t, "Alpha", en[0].Title(models.LocaleEN))

	uk, err := service.List(ctx, models.LocaleUK)
	require.NoError(t, err)
	require.Len(t, uk, 2)
	assert.Equal(t, "Альфа", uk[0].Title(models.LocaleUK))
}

func TestDeletePage(t *testing.T) {
	service, _, db := newService(t)
	editor := testutils.CreateTestUser(t, db, "editor@test.com", "password", "editor")
	admin := testutils.CreateTestUser(t, db, "admin@test.com", "password", "admin")
	ctx := context.Background()

	p, err := service.Create(ctx, editor, page.Input{TitleEN: ptr("Temporary")})
	require.NoError(t, err)
	_, err = service.CreateSection(ctx, editor, p.ID, page.Input{TitleEN: ptr("Body")})
	require.NoError(t, err)

	_, err = service.Delete(ctx, editor, p.ID)
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	res, err := service.Delete(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)

	var sections int64
	db.Model(&models.Section{}).Count(&sections)
	assert.Zero(t, sections)
}
