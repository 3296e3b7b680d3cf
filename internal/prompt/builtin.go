package prompt

// Template names accepted by RenderBuiltin.
const (
	SystemGenerate = "system_generate.md"
	UserGenerate   = "user_generate.md"
	SystemModify   = "system_modify.md"
	UserModify     = "user_modify.md"
)

// builtinTemplates maps template name to content.
var builtinTemplates = map[string]string{
	SystemGenerate: systemGenerateTemplate,
	UserGenerate:   userGenerateTemplate,
	SystemModify:   systemModifyTemplate,
	UserModify:     userModifyTemplate,
}

const systemGenerateTemplate = `You are an expert DevOps engineer specializing in Jenkins pipeline creation.

Generate THREE complete files for Jenkins pipeline setup:
1. Jenkinsfile (declarative pipeline)
2. pipeline_job_config.xml (Jenkins job configuration)
3. required_plugins.xml (plugin installation list)

JENKINS CONTEXT:
{{jenkins_context}}

CRITICAL XML STRUCTURE REQUIREMENTS for pipeline_job_config.xml:
- Use ONLY standard Jenkins XML structure
- Parameters MUST be wrapped in ParametersDefinitionProperty
- Do NOT use CredentialsParameterDefinition in XML - use string parameters instead
- Use standard plugin versions without specific build numbers
- Keep XML structure simple and compatible

CRITICAL REQUIREMENTS:
- Generate COMPLETE, production-ready files with no placeholders
- Use proper syntax and formatting for each file type
- Make files immediately usable in Jenkins
- Include all necessary configurations and dependencies
- Add proper error handling and cleanup
- For required_plugins.xml: ONLY include plugins that are NOT already installed
- List each plugin as <plugin>name@version</plugin> entries
- Use correct plugin versions compatible with the Jenkins version

RESPONSE FORMAT:
Structure your response exactly like this:

=== JENKINSFILE ===
[Complete Jenkinsfile content here]

=== PIPELINE_JOB_CONFIG ===
[Complete pipeline_job_config.xml content here]

=== REQUIRED_PLUGINS ===
[Complete required_plugins.xml content here - ONLY new plugins needed]

=== END ===`

const userGenerateTemplate = `Generate complete Jenkins pipeline files for this repository:

{{summary}}

Repository Details:
- URL: {{repo_url}}
- Description: {{description}}
- Default Branch: {{default_branch}}
- Local Analysis: Repository was cloned and analyzed from filesystem

Key Configuration Files Found:
{{key_files}}

Project Structure:
- Total Files: {{total_files}}
- Source Files: {{source_files}}
- Main Directories: {{main_directories}}

Generate all three files:

1. **Jenkinsfile**: Declarative pipeline with appropriate stages for this tech stack
2. **pipeline_job_config.xml**: Complete Jenkins job configuration for GitHub integration
3. **required_plugins.xml**: List of plugins needed for this pipeline to work

Make all files production-ready and immediately usable.`

const systemModifyTemplate = `You are an expert DevOps engineer. Modify existing Jenkins files based on user feedback.

JENKINS CONTEXT:
{{jenkins_context}}

Analyze the user's feedback and update the files accordingly. Maintain the same quality and structure.

RESPONSE FORMAT:
Structure your response exactly like this:

=== JENKINSFILE ===
[Modified Jenkinsfile content here]

=== PIPELINE_JOB_CONFIG ===
[Modified pipeline_job_config.xml content here]

=== REQUIRED_PLUGINS ===
[Modified required_plugins.xml content here]

=== END ===`

const userModifyTemplate = `User feedback: {{feedback}}

{{#if jenkinsfile}}
**Current Jenkinsfile:**
{{jenkinsfile}}

**Current pipeline_job_config.xml:**
{{job_config}}

**Current required_plugins.xml:**
{{required_plugins}}
{{/if}}

Repository context: {{summary}}

Please modify the files based on the user's feedback. Keep all files complete and production-ready.`
