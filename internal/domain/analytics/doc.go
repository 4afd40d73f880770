// Package analytics derives engagement statistics from a user's quiz
// history: the current daily streak and the average quiz accuracy.
//
// Every function here is pure. Decoding of stored quiz history is tolerant
// of legacy shapes; see DecodeQuizAttempts.
package analytics
