package pee

//go:generate mockgen -package pee -destination mock_reporter_test.go github.com/Observe-l/rdh-pee/quality Reporter
