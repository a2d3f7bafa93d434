package bot

import (
	"testing"
)

func TestTrimChannelString(t *testing.T) {

	tests := []struct {
		name string
		args string
		want string
	}{
		{
			name: "valid test",
			args: "<#1234>",
			want: "1234",
		},
		{
			name: "valid test 2",
			args: "1234",
			want: "1234",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimChannelString(tt.args); got != tt.want {
				t.Errorf("TrimChannelString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEmbedColors(t *testing.T) {
	tests := []struct {
		name string
		got  int
		want int
	}{
		{name: "success", got: SuccessEmbed("ok").Color, want: int(Green)},
		{name: "warning", got: WarningEmbed("hm").Color, want: int(Orange)},
		{name: "error", got: ErrorEmbed("no").Color, want: int(Red)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("embed color = %v, want %v", tt.got, tt.want)
			}
		})
	}
}
