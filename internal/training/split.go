package training

import (
	"math"
	"sort"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/features"
	"github.com/wonny/salescast/internal/model"
	"github.com/wonny/salescast/internal/policy"
)

// Split 시간순 학습/검증/테스트 분할
type Split struct {
	Train features.Table
	Valid features.Table
	Test  features.Table
}

// TimeSplit orders rows by date (then product) and cuts them chronologically.
// Below MinRowsForTest rows the test set is empty and train keeps 1 - ValidFraction (at least one row).
func TimeSplit(table features.Table, p policy.TrainingPolicy) Split {
	idx := make([]int, table.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := table.Rows[idx[a]], table.Rows[idx[b]]
		if !ra.Date.Equal(rb.Date) {
			return ra.Date.Before(rb.Date)
		}
		return ra.ProductName < rb.ProductName
	})

	n := len(idx)
	var nTrain, nValid int
	if n < p.MinRowsForTest {
		nTrain = int(float64(n) * (1 - p.ValidFraction))
		if nTrain < 1 {
			nTrain = min(1, n)
		}
		nValid = n - nTrain
	} else {
		nTrain = int(float64(n) * (1 - p.ValidFraction - p.TestFraction))
		nValid = int(float64(n) * p.ValidFraction)
	}

	return Split{
		Train: subset(table, idx[:nTrain]),
		Valid: subset(table, idx[nTrain:nTrain+nValid]),
		Test:  subset(table, idx[nTrain+nValid:]),
	}
}

func subset(table features.Table, idx []int) features.Table {
	rows := make([]contracts.FeatureRow, len(idx))
	target := make([]float64, len(idx))
	for i, j := range idx {
		rows[i] = table.Rows[j]
		target[i] = table.Target[j]
	}
	return features.NewTable(rows, target)
}

// Evaluate scores predictions against targets; nil when there is nothing to score
func Evaluate(yTrue, yPred []float64) *model.Scores {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return nil
	}
	var ape, ae, se float64
	for i, y := range yTrue {
		diff := y - yPred[i]
		ape += math.Abs(diff) / math.Max(math.Abs(y), 1)
		ae += math.Abs(diff)
		se += diff * diff
	}
	n := float64(len(yTrue))
	return &model.Scores{
		MAPE: ape / n,
		MAE:  ae / n,
		RMSE: math.Sqrt(se / n),
	}
}
