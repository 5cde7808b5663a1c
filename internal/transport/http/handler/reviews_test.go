package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-confirm-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReviews_List(t *testing.T) {
	svc := &mockReviewSvc{}
	svc.On("List", mock.Anything, "p1", 5).Return([]domain.Review{{ReviewID: "r1", ProductID: "p1"}}, nil)
	h := testRouter(nil, nil, NewReviewHandler(svc))

	rr := serve(h, jsonReq(t, http.MethodGet, "/v1/products/p1/reviews?limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var data ReviewsData
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &data))
	require.Len(t, data.Reviews, 1)
	assert.Equal(t, "r1", data.Reviews[0].ReviewID)
}

func TestReviews_ListBadLimit(t *testing.T) {
	h := testRouter(nil, nil, NewReviewHandler(&mockReviewSvc{}))

	rr := serve(h, jsonReq(t, http.MethodGet, "/v1/products/p1/reviews?limit=ten", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReviews_Create(t *testing.T) {
	req := domain.CreateReviewRequest{Text: "great", Rating: 5}
	svc := &mockReviewSvc{}
	svc.On("Create", mock.Anything, testCreds, "p1", req).Return(&domain.Review{ReviewID: "r1", ProductID: "p1", Rating: 5}, nil)
	h := testRouter(nil, nil, NewReviewHandler(svc))

	rr := serve(h, withCreds(jsonReq(t, http.MethodPost, "/v1/products/p1/reviews", req)))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, decodeEnvelope(t, rr).Meta.Success)
}

func TestReviews_CreateRatingOutOfRange(t *testing.T) {
	svc := &mockReviewSvc{}
	h := testRouter(nil, nil, NewReviewHandler(svc))

	rr := serve(h, withCreds(jsonReq(t, http.MethodPost, "/v1/products/p1/reviews", domain.CreateReviewRequest{Text: "meh", Rating: 9})))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReviews_CreateRequiresCredentials(t *testing.T) {
	h := testRouter(nil, nil, NewReviewHandler(&mockReviewSvc{}))

	rr := serve(h, jsonReq(t, http.MethodPost, "/v1/products/p1/reviews", domain.CreateReviewRequest{Text: "x", Rating: 3}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
