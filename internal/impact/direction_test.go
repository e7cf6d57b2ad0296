package impact

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   Trend
	}{
		{
			name:   "undefined result",
			result: Result{Defined: false},
			want:   TrendInvalid,
		},
		{
			name: "positive score with matching slopes",
			result: Result{
				Defined: true, Score: 0.4,
				Pre:  WindowStats{Slope: 1},
				Post: WindowStats{Slope: 2},
			},
			want: TrendPositive,
		},
		{
			name: "negative score with matching slopes",
			result: Result{
				Defined: true, Score: -0.3,
				Pre:  WindowStats{Slope: -1},
				Post: WindowStats{Slope: -2},
			},
			want: TrendNegative,
		},
		{
			name: "falling trend reverses upward",
			result: Result{
				Defined: true, Score: 0.1,
				Pre:  WindowStats{Slope: -2},
				Post: WindowStats{Slope: 1},
			},
			want: TrendFlipToPositive,
		},
		{
			name: "rising trend reverses downward",
			result: Result{
				Defined: true, Score: -0.1,
				Pre:  WindowStats{Slope: 2},
				Post: WindowStats{Slope: -1},
			},
			want: TrendFlipToNegative,
		},
		{
			name: "zero score counts as positive",
			result: Result{
				Defined: true, Score: 0,
				Pre:  WindowStats{Slope: 1},
				Post: WindowStats{Slope: 1},
			},
			want: TrendPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.result); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}
