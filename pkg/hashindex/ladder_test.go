package hashindex

import "testing"

func Test_SizeLadder_Endpoints_Match_LadderMin_And_LadderMax(t *testing.T) {
	t.Parallel()

	if sizeLadder[0] != ladderMin {
		t.Errorf("sizeLadder[0] = %d, want ladderMin = %d", sizeLadder[0], ladderMin)
	}

	if sizeLadder[len(sizeLadder)-1] != ladderMax {
		t.Errorf("sizeLadder[last] = %d, want ladderMax = %d", sizeLadder[len(sizeLadder)-1], ladderMax)
	}
}

func Test_SizeLadder_Is_Strictly_Ascending(t *testing.T) {
	t.Parallel()

	for i := 1; i < len(sizeLadder); i++ {
		if sizeLadder[i] <= sizeLadder[i-1] {
			t.Fatalf("sizeLadder not ascending at index %d: %d <= %d", i, sizeLadder[i], sizeLadder[i-1])
		}
	}
}

func Test_FitSize_Returns_Smallest_Entry_Not_Less_Than_N(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    uint32
		want uint32
	}{
		{n: 0, want: ladderMin},
		{n: 1, want: ladderMin},
		{n: 1031, want: 1031},
		{n: 1032, want: 2053},
		{n: 4099, want: 4099},
		{n: ladderMax, want: ladderMax},
		{n: ladderMax + 1, want: ladderMax},
	}

	for _, tt := range tests {
		if got := fitSize(tt.n); got != tt.want {
			t.Errorf("fitSize(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func Test_GrowSize_Returns_Next_Rung_And_Saturates_At_Max(t *testing.T) {
	t.Parallel()

	if got := growSize(1031); got != 2053 {
		t.Errorf("growSize(1031) = %d, want 2053", got)
	}

	if got := growSize(ladderMax); got != ladderMax {
		t.Errorf("growSize(ladderMax) = %d, want ladderMax (saturating)", got)
	}
}

func Test_ShrinkSize_Returns_Previous_Rung_And_Saturates_At_Min(t *testing.T) {
	t.Parallel()

	if got := shrinkSize(2053); got != 1031 {
		t.Errorf("shrinkSize(2053) = %d, want 1031", got)
	}

	if got := shrinkSize(ladderMin); got != ladderMin {
		t.Errorf("shrinkSize(ladderMin) = %d, want ladderMin (saturating)", got)
	}
}

func Test_LowerLimit_Is_Zero_At_Ladder_Minimum(t *testing.T) {
	t.Parallel()

	if got := lowerLimit(ladderMin); got != 0 {
		t.Errorf("lowerLimit(ladderMin) = %d, want 0", got)
	}
}

func Test_UpperLimit_Equals_NumBuckets_At_Ladder_Maximum(t *testing.T) {
	t.Parallel()

	if got := upperLimit(ladderMax); got != ladderMax {
		t.Errorf("upperLimit(ladderMax) = %d, want %d", got, ladderMax)
	}
}

func Test_LowerLimit_And_UpperLimit_Use_Documented_Load_Factors(t *testing.T) {
	t.Parallel()

	const numBuckets = 4099

	if got, want := lowerLimit(numBuckets), uint32(float64(numBuckets)*0.25); got != want {
		t.Errorf("lowerLimit(%d) = %d, want %d", numBuckets, got, want)
	}

	if got, want := upperLimit(numBuckets), uint32(float64(numBuckets)*0.75); got != want {
		t.Errorf("upperLimit(%d) = %d, want %d", numBuckets, got, want)
	}
}
