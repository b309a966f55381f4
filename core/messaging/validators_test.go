package messaging

import "testing"

func TestNewThread_Validate(t *testing.T) {
	tests := []struct {
		name    string
		nt      NewThread
		wantErr bool
	}{
		{name: "missing contact id", nt: NewThread{}, wantErr: true},
		{name: "blank contact id", nt: NewThread{ContactID: "   "}, wantErr: true},
		{name: "contact only", nt: NewThread{ContactID: "u-2"}},
		{name: "contact and subject", nt: NewThread{ContactID: "u-2", SubjectID: "s-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.nt.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewThread_ValidateCleans(t *testing.T) {
	nt := NewThread{ContactID: "  u-2 ", SubjectID: " s-1  "}
	if err := nt.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if nt.ContactID != "u-2" || nt.SubjectID != "s-1" {
		t.Errorf("Validate() left ids untrimmed: %+v", nt)
	}
}

func TestNewMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "empty", body: "", wantErr: true},
		{name: "whitespace only", body: "   \t ", wantErr: true},
		{name: "real text", body: "hello"},
		{name: "padded text", body: "  hello  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nm := NewMessage{Body: tt.body}
			if err := nm.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}
