package leave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeaveRequest_IsUnpaid(t *testing.T) {
	cases := []struct {
		leaveType string
		want      bool
	}{
		{"Unpaid Leave", true},
		{"Emergency (Unpaid)", true},
		{"Annual Leave", false},
		{"unpaid leave", false},
		{"", false},
	}
	for _, c := range cases {
		got := LeaveRequest{LeaveType: c.leaveType}.IsUnpaid()
		assert.Equal(t, c.want, got, "IsUnpaid(%q)", c.leaveType)
	}
}

func TestLeaveRequest_IsApproved(t *testing.T) {
	assert.True(t, LeaveRequest{Status: LeaveRequestStatusApproved}.IsApproved())
	assert.False(t, LeaveRequest{Status: LeaveRequestStatusPending}.IsApproved())
	assert.False(t, LeaveRequest{Status: LeaveRequestStatusRejected}.IsApproved())
}
