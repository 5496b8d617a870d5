// Package fuzztests houses Go fuzz harnesses for the scanner engine and the
// bundled grammars. Its goal is to guard the cursor invariants (coverage,
// contiguity, backtrack idempotence) and the absence of panics on arbitrary
// bytes, including invalid UTF-8.
//
// Назначение: прогонять произвольные байты через source -> scanner -> grammar.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.

package fuzztests
