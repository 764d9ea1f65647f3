package renderer

import "fmt"

// MaxLights is the number of lights the crystal shader evaluates.
const MaxLights = 8

// Texture units used by the crystal shader.
const (
	unitDiffuse int32 = iota
	unitNormal
	unitRoughness
	unitMetalness
	unitEmissive
	unitDisplacement
	unitEnvEquirect
	unitEnvCube
)

// Shader is a vertex/fragment pair and, once compiled, its program.
type Shader struct {
	vertexSource   string
	fragmentSource string
	program        uint32
	uniforms       *UniformCache
	device         Device
}

// NewCrystalShader returns the uncompiled crystal PBR shader.
func NewCrystalShader() *Shader {
	return &Shader{
		vertexSource:   crystalVertexShader,
		fragmentSource: fmt.Sprintf(crystalFragmentShader, MaxLights),
	}
}

// Compile links the program on device.
func (s *Shader) Compile(device Device) error {
	program, err := device.CreateProgram(s.vertexSource, s.fragmentSource)
	if err != nil {
		return err
	}
	s.device = device
	s.program = program
	s.uniforms = NewUniformCache(device, program)
	return nil
}

func (s *Shader) Use() {
	s.device.UseProgram(s.program)
}

func (s *Shader) Uniforms() *UniformCache {
	return s.uniforms
}

// Delete frees the program. Safe to call twice.
func (s *Shader) Delete() {
	if s.program == 0 {
		return
	}
	s.device.DeleteProgram(s.program)
	s.program = 0
	s.uniforms = nil
}

var crystalVertexShader = `#version 330 core

layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec2 inTexCoord;
layout(location = 2) in vec3 inNormal;

uniform mat4 model;
uniform mat4 viewProjection;
uniform bool hasDisplacementMap;
uniform sampler2D displacementMap;
uniform float displacementScale;

out vec2 fragTexCoord;
out vec3 Normal;
out vec3 FragPos;

void main() {
    vec3 position = inPosition;
    if (hasDisplacementMap) {
        position += inNormal * texture(displacementMap, inTexCoord).r * displacementScale;
    }
    FragPos = vec3(model * vec4(position, 1.0));
    Normal = mat3(transpose(inverse(model))) * inNormal;
    fragTexCoord = inTexCoord;
    gl_Position = viewProjection * vec4(FragPos, 1.0);
}
`

var crystalFragmentShader = `#version 330 core
#define MAX_LIGHTS %d
#define PI 3.14159265

in vec2 fragTexCoord;
in vec3 Normal;
in vec3 FragPos;

out vec4 FragColor;

uniform vec3 viewPos;

uniform vec3 baseColor;
uniform float metalness;
uniform float roughness;
uniform float transmission;
uniform float thickness;
uniform float clearcoat;
uniform float clearcoatRoughness;
uniform float ior;
uniform float reflectivity;
uniform float iridescence;
uniform float iridescenceIOR;
uniform vec3 emissive;
uniform float envIntensity;
uniform float opacity;
uniform bool transparent;

uniform bool enableClearcoat;
uniform bool enableTransmission;
uniform bool enableIridescence;
uniform bool enableIBL;
uniform float iblIntensity;
uniform float exposure;

uniform bool hasDiffuseMap;
uniform bool hasNormalMap;
uniform bool hasRoughnessMap;
uniform bool hasMetalnessMap;
uniform bool hasEmissiveMap;
uniform sampler2D diffuseMap;
uniform sampler2D normalMap;
uniform sampler2D roughnessMap;
uniform sampler2D metalnessMap;
uniform sampler2D emissiveMap;

uniform bool envIsCube;
uniform bool hasEnvMap;
uniform sampler2D envEquirect;
uniform samplerCube envCube;
uniform vec3 hemiSky;
uniform vec3 hemiGround;

uniform int lightCount;
uniform int lightType[MAX_LIGHTS];
uniform vec3 lightPosition[MAX_LIGHTS];
uniform vec3 lightColor[MAX_LIGHTS];
uniform float lightIntensity[MAX_LIGHTS];

vec3 sampleEnv(vec3 dir) {
    if (!hasEnvMap) {
        return mix(hemiGround, hemiSky, dir.y * 0.5 + 0.5);
    }
    if (envIsCube) {
        return texture(envCube, dir).rgb;
    }
    vec2 uv = vec2(atan(dir.z, dir.x) / (2.0 * PI) + 0.5, acos(clamp(dir.y, -1.0, 1.0)) / PI);
    return texture(envEquirect, uv).rgb;
}

float ggx(float NdotH, float a) {
    float a2 = a * a;
    float d = NdotH * NdotH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

vec3 fresnel(float cosTheta, vec3 F0) {
    return F0 + (1.0 - F0) * pow(1.0 - cosTheta, 5.0);
}

vec3 thinFilm(float cosTheta) {
    float phase = 2.0 * PI * (iridescenceIOR - 1.0) + cosTheta * 4.0;
    return 0.5 + 0.5 * cos(phase + vec3(0.0, 2.0 * PI / 3.0, 4.0 * PI / 3.0));
}

void main() {
    vec3 albedo = baseColor;
    if (hasDiffuseMap) albedo *= texture(diffuseMap, fragTexCoord).rgb;
    float metal = metalness;
    if (hasMetalnessMap) metal *= texture(metalnessMap, fragTexCoord).b;
    float rough = roughness;
    if (hasRoughnessMap) rough *= texture(roughnessMap, fragTexCoord).g;
    rough = max(rough, 0.02);

    vec3 N = normalize(Normal);
    if (hasNormalMap) {
        vec3 t = texture(normalMap, fragTexCoord).xyz * 2.0 - 1.0;
        N = normalize(N + t.x * 0.25 * cross(N, vec3(0.0, 1.0, 0.0)));
    }
    vec3 V = normalize(viewPos - FragPos);
    float NdotV = max(dot(N, V), 0.001);

    float f0 = pow((ior - 1.0) / (ior + 1.0), 2.0) * reflectivity * 2.0;
    vec3 F0 = mix(vec3(min(f0, 1.0)), albedo, metal);

    vec3 color = vec3(0.0);
    for (int i = 0; i < lightCount && i < MAX_LIGHTS; i++) {
        vec3 radiance = lightColor[i] * lightIntensity[i];
        if (lightType[i] == 2) {
            color += albedo * radiance * (1.0 - metal);
            continue;
        }
        vec3 L = lightType[i] == 0 ? normalize(lightPosition[i]) : normalize(lightPosition[i] - FragPos);
        if (lightType[i] == 1) {
            float dist = length(lightPosition[i] - FragPos);
            radiance /= 1.0 + 0.09 * dist + 0.032 * dist * dist;
        }
        vec3 H = normalize(V + L);
        float NdotL = max(dot(N, L), 0.0);
        vec3 F = fresnel(max(dot(H, V), 0.0), F0);
        vec3 spec = F * ggx(max(dot(N, H), 0.0), rough * rough) * 0.25 / NdotV;
        vec3 kd = (1.0 - F) * (1.0 - metal);
        color += (kd * albedo / PI + spec) * radiance * NdotL;
    }

    vec3 F = fresnel(NdotV, F0);
    if (enableIBL) {
        vec3 R = reflect(-V, N);
        color += sampleEnv(R) * F * envIntensity * iblIntensity;
    }
    if (enableTransmission) {
        vec3 T = refract(-V, N, 1.0 / ior);
        float refraction = transmission / (1.0 + 0.5 * thickness);
        vec3 through = sampleEnv(T) * albedo * envIntensity;
        color = mix(color, through, refraction * (1.0 - metal) * (1.0 - F.r));
    }
    if (enableClearcoat && clearcoat > 0.0) {
        float Fc = 0.04 + 0.96 * pow(1.0 - NdotV, 5.0);
        vec3 coat = sampleEnv(reflect(-V, N)) * envIntensity * (1.0 - clearcoatRoughness);
        color = color * (1.0 - clearcoat * Fc) + coat * clearcoat * Fc;
    }
    if (enableIridescence && iridescence > 0.0) {
        color += thinFilm(NdotV) * iridescence * 0.12;
    }

    vec3 glow = emissive;
    if (hasEmissiveMap) glow *= texture(emissiveMap, fragTexCoord).rgb;
    color += glow;

    color = vec3(1.0) - exp(-color * exposure);
    color = pow(color, vec3(1.0 / 2.2));

    float alpha = 1.0;
    if (transparent) {
        alpha = clamp(opacity * (1.0 - 0.6 * transmission / (1.0 + 0.5 * thickness)), 0.0, 1.0);
    }
    FragColor = vec4(color, alpha);
}
`
