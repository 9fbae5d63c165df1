package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestStringsAndGetString(t *testing.T) {
	msg := Strings(map[string]string{FieldMobile: "phone-1", FieldRequester: "alice"})

	assert.Equal(t, "phone-1", GetString(msg, FieldMobile))
	assert.Equal(t, "alice", GetString(msg, FieldRequester))
	assert.Empty(t, GetString(msg, FieldDue))
	assert.Empty(t, GetString(nil, FieldMobile))

	msg.Fields[FieldDue] = structpb.NewNumberValue(3)
	assert.Empty(t, GetString(msg, FieldDue), "non-string values read as empty")
}

func TestServiceDescMethods(t *testing.T) {
	var names []string
	for _, m := range MobileService_ServiceDesc.Methods {
		names = append(names, m.MethodName)
	}
	assert.Equal(t, []string{"Book", "Return", "List", "Ping"}, names)
	assert.Equal(t, "/handset.v1.MobileService/Book", BookMethod)
}
