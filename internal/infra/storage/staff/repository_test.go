package staff

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

type fakeRow struct {
	values []interface{}
	err    error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch ptr := d.(type) {
		case *int64:
			*ptr = r.values[i].(int64)
		case *string:
			*ptr = r.values[i].(string)
		case *bool:
			*ptr = r.values[i].(bool)
		case *[]byte:
			if r.values[i] != nil {
				*ptr = r.values[i].([]byte)
			}
		case *types.TimeString:
			if err := ptr.Scan(r.values[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func TestScanStaffMember_NormalizesSkills(t *testing.T) {
	row := fakeRow{values: []interface{}{
		int64(7), "Anna", true, []byte(`[1, "2"]`), "09:00:00", "17:00:00", "13:00:00", "14:00:00",
	}}

	member, err := scanStaffMember(row)
	require.NoError(t, err)

	assert.Equal(t, int64(7), member.ID)
	assert.True(t, member.IsQualifiedFor(1))
	assert.True(t, member.IsQualifiedFor(2))
	assert.False(t, member.IsQualifiedFor(3))
	assert.Equal(t, types.TimeString("09:00"), member.ShiftStart)
	require.NotNil(t, member.BreakStart)
	assert.Equal(t, types.TimeString("13:00"), *member.BreakStart)
}

func TestScanStaffMember_NoBreakAndNullSkills(t *testing.T) {
	row := fakeRow{values: []interface{}{
		int64(8), "Boris", true, nil, "10:00", "18:00", nil, nil,
	}}

	member, err := scanStaffMember(row)
	require.NoError(t, err)

	assert.True(t, member.Skills.IsGeneralist())
	assert.Nil(t, member.BreakStart)
	assert.Nil(t, member.BreakEnd)
}

func TestScanStaffMember_Error(t *testing.T) {
	_, err := scanStaffMember(fakeRow{err: errors.New("boom")})
	assert.Error(t, err)
}

func TestLockQuery_OrdersIDs(t *testing.T) {
	query, args, err := lockQuery([]int64{9, 2, 5})
	require.NoError(t, err)

	assert.Contains(t, query, "FOR UPDATE")
	assert.Contains(t, query, "ORDER BY id ASC")
	assert.Equal(t, []interface{}{int64(2), int64(5), int64(9)}, args)
}

func TestLockError_KeepsConflictCodes(t *testing.T) {
	err := lockError("execute query", &pq.Error{Code: "40P01"})
	assert.ErrorIs(t, err, txmanager.ErrConcurrencyConflict)
	assert.NotErrorIs(t, err, ErrExecQuery)

	err = lockError("rows error", &pq.Error{Code: "40001"})
	assert.ErrorIs(t, err, txmanager.ErrConcurrencyConflict)

	err = lockError("execute query", errors.New("connection refused"))
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.False(t, txmanager.IsConflictError(err))
}
