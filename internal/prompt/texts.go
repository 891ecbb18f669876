// Package prompt assembles the structured prompt sent to the generation
// model and owns the fixed safety strings.
package prompt

// Safety-critical fixed strings. Both appear verbatim in responses and are
// asserted on by tests and monitoring; never paraphrase them.
const (
	// Disclaimer is appended to every generated answer.
	Disclaimer = "⚠️ **IMPORTANT DISCLAIMER**: I am not a medical professional. For diagnosis or treatment, consult a qualified healthcare provider."

	// Refusal is returned verbatim for out-of-scope queries, before any
	// retrieval or generation.
	Refusal = "This query is outside my knowledge base. Please consult an appropriate source."
)

// systemInstructions establishes the assistant's role and limits.
const systemInstructions = `You are a helpful medical information assistant. Your role is to provide general health information based on the provided context.

CRITICAL SAFETY RULES:
1. Always include the disclaimer: "I am not a medical professional. For diagnosis or treatment, consult a qualified healthcare provider."
2. Only provide general health information, never specific medical advice
3. Do not provide diagnoses, prescriptions, or treatment recommendations
4. If asked about specific medical conditions, symptoms, or treatments, redirect to healthcare professionals
5. If the query is outside your knowledge base, say: "This query is outside my knowledge base. Please consult an appropriate source."

Use only the provided context to answer questions. If the context doesn't contain relevant information, say so clearly.`

// noContextNotice replaces the context block when retrieval found nothing;
// the model answers from general medical knowledge, disclaimer included.
const noContextNotice = "No specific reference material was found in the knowledge base. " +
	"Answer from general medical knowledge, and include the disclaimer."
