package dynamo

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/brnno-tech/brnno-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"fcm_token": "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "fcm_token"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"read":       true,
		"message":    "hello",
		"booking_id": "b1",
	}
	// Call twice to verify determinism.
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys must be sorted: booking_id < message < read
	assert.Equal(t, "booking_id", ue1.Names["#f0"])
	assert.Equal(t, "message", ue1.Names["#f1"])
	assert.Equal(t, "read", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"read": true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_Empty(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	require.Error(t, err)
}

func TestClassifyIndexErr(t *testing.T) {
	missing := &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: "The table does not have the specified index: user_id-created_at-index",
	}
	assert.True(t, errors.Is(classifyIndexErr(missing), domain.ErrIndexMissing))

	rnf := &types.ResourceNotFoundException{}
	assert.True(t, errors.Is(classifyIndexErr(rnf), domain.ErrIndexMissing))

	other := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}
	assert.False(t, errors.Is(classifyIndexErr(other), domain.ErrIndexMissing))

	assert.NoError(t, classifyIndexErr(nil))
}
