package types

// Bytecode compression
// Compressed data is a sequence of 8-byte clusters of command codes. Each code
// describes the next 8-byte block of the case; literal blocks follow the cluster.

// ClusterSize is the number of command codes in one cluster.
const ClusterSize = 8

// Compression command codes. Codes 1-251 encode the numeric value code - bias.
const (
	// CodeIgnore is padding and is skipped.
	CodeIgnore byte = 0

	// CodeBiasedMax is the highest code that carries a biased integer.
	CodeBiasedMax byte = 251

	// CodeEndOfFile marks the end of the data stream.
	CodeEndOfFile byte = 252

	// CodeLiteral means the block is stored verbatim after the cluster.
	CodeLiteral byte = 253

	// CodeBlanks means the block is 8 spaces, or 0.0 for numeric variables.
	CodeBlanks byte = 254

	// CodeSysMiss means the numeric system-missing value.
	CodeSysMiss byte = 255
)
