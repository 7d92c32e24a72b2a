package constant

const (
	// RAGPromptWithContext frames retrieved chunks for the model. The first
	// slot is the assembled context, the second the user's question. The
	// trailing "Based on the context provided above, " primes the model to
	// stay grounded in the supplied chunks.
	RAGPromptWithContext = `You are a helpful AI assistant. Use the provided context to answer the user's question accurately and comprehensively.

Context:
%s

Question: %s

Answer: Based on the context provided above, `

	// RAGPromptNoContext is used when the session has no stored documents or
	// nothing survived the similarity threshold.
	RAGPromptNoContext = `You are a helpful AI assistant. Answer the following question:

%s

Answer: `
)

// User-facing generation fallbacks. These are returned as the response body,
// never as errors, so a dead model backend still yields a readable answer.
const (
	LLMUnreachableResponse = "Error: Could not connect to the local AI server. Please make sure Ollama is running with: 'ollama serve'"
	LLMTimeoutResponse     = "Error: Request timed out. The AI model might be loading or busy."
)
