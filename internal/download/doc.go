package download

// Package download runs the application's single background action. It spawns
// the downloader executable, streams its combined output line by line, turns
// "[download] NN.N%" lines into progress, and owns the cancellation handle of
// whatever task is active. Other jobs (the converter update) share the slot
// through Submit.
