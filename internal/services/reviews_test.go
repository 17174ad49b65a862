package services

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateResourceBounds(t *testing.T) {
	mgr, cfg := newTestStore(t)
	addVerifiedUser(t, mgr, "alice")
	uploaded := uploadApproved(t, mgr, cfg, "alice", "Notes", "Physics", "notes.pdf")

	require.NoError(t, mgr.With(func(handle *sqlx.DB) error {
		for _, rating := range []int{0, 6, -1} {
			err := RateResource(handle, "alice", uploaded.ResourceID, rating, "")
			assert.Equal(t, KindValidation, KindOf(err))
		}
		var count int
		require.NoError(t, handle.Get(&count, `SELECT COUNT(*) FROM reviews`))
		assert.Zero(t, count)
		return nil
	}))
}

func TestRateResourceOncePerReviewer(t *testing.T) {
	mgr, cfg := newTestStore(t)
	addVerifiedUser(t, mgr, "alice")
	addVerifiedUser(t, mgr, "bob")
	uploaded := uploadApproved(t, mgr, cfg, "alice", "Notes", "Physics", "notes.pdf")

	require.NoError(t, mgr.With(func(handle *sqlx.DB) error {
		require.NoError(t, RateResource(handle, "bob", uploaded.ResourceID, 4, "solid notes"))

		err := RateResource(handle, "bob", uploaded.ResourceID, 5, "changed my mind")
		assert.Equal(t, KindInvalidState, KindOf(err))
		assert.ErrorContains(t, err, "already rated")

		// A different reviewer is still allowed.
		require.NoError(t, RateResource(handle, "alice", uploaded.ResourceID, 3, ""))

		var count int
		require.NoError(t, handle.Get(&count,
			`SELECT COUNT(*) FROM reviews WHERE resource_id = ?`, uploaded.ResourceID))
		assert.Equal(t, 2, count)
		return nil
	}))
}

func TestRateResourceRequiresApproved(t *testing.T) {
	mgr, cfg := newTestStore(t)
	addVerifiedUser(t, mgr, "alice")

	result, err := UploadResource(mgr, cfg, UploadInput{
		Actor:        "alice",
		Title:        "Draft",
		CategoryName: "Math",
		SourcePath:   writeSourceFile(t, "draft.txt", "x"),
	})
	require.NoError(t, err)

	require.NoError(t, mgr.With(func(handle *sqlx.DB) error {
		assert.Equal(t, KindNotFound, KindOf(RateResource(handle, "alice", result.ResourceID, 4, "")))
		assert.Equal(t, KindNotFound, KindOf(RateResource(handle, "alice", 9999, 4, "")))
		return nil
	}))
}

func TestListReviews(t *testing.T) {
	mgr, cfg := newTestStore(t)
	addVerifiedUser(t, mgr, "alice")
	addVerifiedUser(t, mgr, "bob")
	uploaded := uploadApproved(t, mgr, cfg, "alice", "Notes", "Physics", "notes.pdf")

	require.NoError(t, mgr.With(func(handle *sqlx.DB) error {
		require.NoError(t, RateResource(handle, "bob", uploaded.ResourceID, 4, ""))

		title, reviews, err := ListReviews(handle, uploaded.ResourceID)
		require.NoError(t, err)
		assert.Equal(t, "Notes", title)
		require.Len(t, reviews, 1)
		assert.Equal(t, "bob", reviews[0].Reviewer)
		assert.Equal(t, 4, reviews[0].Rating)
		assert.Nil(t, reviews[0].Comment)

		_, _, err = ListReviews(handle, 9999)
		assert.Equal(t, KindNotFound, KindOf(err))
		return nil
	}))
}
